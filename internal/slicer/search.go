package slicer

import (
	"fmt"
	"strings"
)

// ApplySearch marks items whose lowercased label does not contain the
// lowercased text as filtered out. Only empty text clears the flags;
// whitespace is matched like any other character. It returns
// the number of items still visible.
func ApplySearch(set *ItemSet, text string) int {
	needle := strings.ToLower(text)
	visible := 0
	for _, it := range set.Items() {
		it.FilteredOut = needle != "" && !strings.Contains(strings.ToLower(it.Label), needle)
		if !it.FilteredOut {
			visible++
		}
	}
	return visible
}

// ShowDisabled controls where non-selectable items go before layout.
type ShowDisabled int

const (
	// ShowDisabledInplace keeps inert items at their source position.
	ShowDisabledInplace ShowDisabled = iota
	// ShowDisabledBottom moves inert items after the selectable ones.
	ShowDisabledBottom
	// ShowDisabledHide drops inert items from the layout.
	ShowDisabledHide
)

func (m ShowDisabled) String() string {
	switch m {
	case ShowDisabledInplace:
		return "inplace"
	case ShowDisabledBottom:
		return "bottom"
	case ShowDisabledHide:
		return "hide"
	}
	return fmt.Sprintf("show_disabled(%d)", int(m))
}

// ParseShowDisabled parses a settings value. Empty means inplace.
func ParseShowDisabled(s string) (ShowDisabled, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inplace":
		return ShowDisabledInplace, nil
	case "bottom":
		return ShowDisabledBottom, nil
	case "hide":
		return ShowDisabledHide, nil
	}
	return ShowDisabledInplace, fmt.Errorf("unknown show_disabled mode %q", s)
}

// Arrange orders items for layout according to mode. Relative order within
// the selectable and the inert items is preserved.
func Arrange(items []*Item, mode ShowDisabled) []*Item {
	switch mode {
	case ShowDisabledBottom:
		out := make([]*Item, 0, len(items))
		var inert []*Item
		for _, it := range items {
			if it.Selectable {
				out = append(out, it)
			} else {
				inert = append(inert, it)
			}
		}
		return append(out, inert...)
	case ShowDisabledHide:
		out := make([]*Item, 0, len(items))
		for _, it := range items {
			if it.Selectable {
				out = append(out, it)
			}
		}
		return out
	default:
		return items
	}
}
