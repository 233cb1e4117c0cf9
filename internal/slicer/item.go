package slicer

import (
	"math"

	errs "github.com/wcatz/chiclet-slicer/internal/errors"
)

// NoValue marks an item without a numeric measure.
var NoValue = math.Inf(-1)

// Identity is the stable join key of a data row across updates.
type Identity string

// Key returns the persisted form of the identity.
func (id Identity) Key() string {
	return string(id)
}

// Item is one selectable data row rendered as a chiclet.
type Item struct {
	Identity    Identity
	Label       string
	ImageRef    string
	Value       float64
	Selectable  bool
	Selected    bool
	FilteredOut bool
	Ordinal     int
}

// HasValue reports whether the item carries a numeric measure.
func (it *Item) HasValue() bool {
	return !math.IsInf(it.Value, -1)
}

// HasImage reports whether the item has an accepted image reference.
func (it *Item) HasImage() bool {
	return it.ImageRef != ""
}

// ItemSet is an ordered snapshot of items indexed by identity.
type ItemSet struct {
	items []*Item
	index map[Identity]int
}

// NewItemSet builds a set from items in source order. Ordinals are assigned
// from position; identities must be unique.
func NewItemSet(items []*Item) (*ItemSet, error) {
	s := &ItemSet{
		items: make([]*Item, len(items)),
		index: make(map[Identity]int, len(items)),
	}
	for i, it := range items {
		if _, dup := s.index[it.Identity]; dup {
			return nil, errs.New(errs.ErrCodeInvalidInput, "duplicate identity %q at ordinal %d", it.Identity, i)
		}
		it.Ordinal = i
		s.items[i] = it
		s.index[it.Identity] = i
	}
	return s, nil
}

// Len returns the number of items, including filtered ones.
func (s *ItemSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the item at ordinal i.
func (s *ItemSet) At(i int) *Item {
	return s.items[i]
}

// Items returns all items in ordinal order.
func (s *ItemSet) Items() []*Item {
	if s == nil {
		return nil
	}
	return s.items
}

// Lookup returns the item with the given identity.
func (s *ItemSet) Lookup(id Identity) (*Item, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

// Identities returns the identity sequence in ordinal order.
func (s *ItemSet) Identities() []Identity {
	ids := make([]Identity, 0, s.Len())
	for _, it := range s.Items() {
		ids = append(ids, it.Identity)
	}
	return ids
}

// Visible returns the items not filtered out by search, in ordinal order.
func (s *ItemSet) Visible() []*Item {
	var out []*Item
	for _, it := range s.Items() {
		if !it.FilteredOut {
			out = append(out, it)
		}
	}
	return out
}

// Selected returns the selected items in ordinal order.
func (s *ItemSet) Selected() []*Item {
	var out []*Item
	for _, it := range s.Items() {
		if it.Selected {
			out = append(out, it)
		}
	}
	return out
}

// FirstSelectable returns the first selectable, unfiltered item by ordinal.
func (s *ItemSet) FirstSelectable() (*Item, bool) {
	for _, it := range s.Items() {
		if it.Selectable && !it.FilteredOut {
			return it, true
		}
	}
	return nil, false
}
