package slicer

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	errs "github.com/wcatz/chiclet-slicer/internal/errors"
)

// CategoryColumn is the label source of the data view.
type CategoryColumn struct {
	Name   string        `json:"name" yaml:"name" toml:"name"`
	Format string        `json:"format" yaml:"format" toml:"format"`
	Values []interface{} `json:"values" yaml:"values" toml:"values"`
}

// ImageColumn carries one image string per row.
type ImageColumn struct {
	Name   string        `json:"name" yaml:"name" toml:"name"`
	Values []interface{} `json:"values" yaml:"values" toml:"values"`
}

// ValueColumn is a numeric measure per row. A non-empty Highlights slice
// marks rows with a nil highlight as not selectable.
type ValueColumn struct {
	Name       string        `json:"name" yaml:"name" toml:"name"`
	Values     []interface{} `json:"values" yaml:"values" toml:"values"`
	Highlights []interface{} `json:"highlights,omitempty" yaml:"highlights,omitempty" toml:"highlights,omitempty"`
}

// DataView is the table delivered by the host.
type DataView struct {
	Category *CategoryColumn `json:"category" yaml:"category" toml:"category"`
	Image    *ImageColumn    `json:"image,omitempty" yaml:"image,omitempty" toml:"image,omitempty"`
	Values   []ValueColumn   `json:"values,omitempty" yaml:"values,omitempty" toml:"values,omitempty"`
	// Segmented reports that the host holds more rows than delivered.
	Segmented bool `json:"segmented,omitempty" yaml:"segmented,omitempty" toml:"segmented,omitempty"`
}

// IdentityMinter issues the identity of a row from its category key.
type IdentityMinter interface {
	Mint(key string) Identity
}

// UUIDMinter mints name-based (SHA-1) UUIDs, so the same category value
// always yields the same identity.
type UUIDMinter struct {
	Namespace uuid.UUID
}

// NewUUIDMinter returns a minter scoped to the given namespace name.
func NewUUIDMinter(namespace string) *UUIDMinter {
	return &UUIDMinter{Namespace: uuid.NewSHA1(uuid.NameSpaceURL, []byte(namespace))}
}

// Mint implements IdentityMinter.
func (m *UUIDMinter) Mint(key string) Identity {
	return Identity(uuid.NewSHA1(m.Namespace, []byte(key)).String())
}

// Convert builds an ItemSet from a data view. It fails with NO_DATA when
// the view has no category column or no category values.
func Convert(dv *DataView, minter IdentityMinter) (*ItemSet, error) {
	if dv == nil {
		return nil, errs.New(errs.ErrCodeNoData, "no data view")
	}
	if dv.Category == nil {
		return nil, errs.New(errs.ErrCodeNoData, "no category column")
	}
	if len(dv.Category.Values) == 0 {
		return nil, errs.New(errs.ErrCodeNoData, "category column %q has no values", dv.Category.Name)
	}
	if minter == nil {
		minter = NewUUIDMinter(dv.Category.Name)
	}

	highlights := highlightColumn(dv.Values)
	seen := make(map[string]int, len(dv.Category.Values))
	items := make([]*Item, 0, len(dv.Category.Values))

	for row, v := range dv.Category.Values {
		key := categoryKey(v)
		if n := seen[key]; n > 0 {
			seen[key] = n + 1
			key = fmt.Sprintf("%s\x00%d", key, n)
		} else {
			seen[key] = 1
		}

		it := &Item{
			Identity:   minter.Mint(key),
			Label:      FormatLabel(v, dv.Category.Format),
			Value:      NoValue,
			Selectable: true,
		}
		if dv.Image != nil {
			if s, ok := cell(dv.Image.Values, row).(string); ok {
				it.ImageRef = ValidateImage(s)
			}
		}
		if len(dv.Values) > 0 {
			if f, ok := toFloat(cell(dv.Values[0].Values, row)); ok {
				it.Value = f
			}
		}
		if highlights != nil && cell(highlights, row) == nil {
			it.Selectable = false
		}
		items = append(items, it)
	}
	return NewItemSet(items)
}

// highlightColumn returns the highlights of the first value column that has any.
func highlightColumn(cols []ValueColumn) []interface{} {
	for _, c := range cols {
		if len(c.Highlights) > 0 {
			return c.Highlights
		}
	}
	return nil
}

// categoryKey normalizes a category value so numbers decoded by different
// formats share a key.
func categoryKey(v interface{}) string {
	if f, ok := toFloat(v); ok {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	switch s := v.(type) {
	case nil:
		return "nil"
	case string:
		return "s:" + s
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func cell(values []interface{}, row int) interface{} {
	if row < 0 || row >= len(values) {
		return nil
	}
	return values[row]
}
