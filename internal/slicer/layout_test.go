package slicer

import (
	"fmt"
	"reflect"
	"testing"
)

func makeItems(labels ...string) []*Item {
	items := make([]*Item, len(labels))
	for i, l := range labels {
		items[i] = &Item{Identity: Identity(l), Label: l, Value: NoValue, Selectable: true}
	}
	return items
}

func numberedItems(n int) []*Item {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("item-%02d", i)
	}
	return makeItems(labels...)
}

func makeSet(t *testing.T, labels ...string) *ItemSet {
	t.Helper()
	set, err := NewItemSet(makeItems(labels...))
	if err != nil {
		t.Fatalf("NewItemSet: %v", err)
	}
	return set
}

func groupSizes(res LayoutResult) []int {
	sizes := make([]int, len(res.Groups))
	for i, g := range res.Groups {
		sizes[i] = len(g)
	}
	return sizes
}

func TestLayoutPartitionCompleteness(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 7, 11, 12, 31} {
		for rows := -1; rows <= 6; rows++ {
			for cols := -1; cols <= 6; cols++ {
				for _, o := range []Orientation{Horizontal, Vertical} {
					items := numberedItems(n)
					res := Layout(items, LayoutConfig{Rows: rows, Columns: cols, Orientation: o})
					flat := res.Flatten()
					if len(flat) != n {
						t.Fatalf("n=%d rows=%d cols=%d %s: flattened %d items", n, rows, cols, o, len(flat))
					}
					for i := range items {
						if flat[i] != items[i] {
							t.Fatalf("n=%d rows=%d cols=%d %s: item %d out of order", n, rows, cols, o, i)
						}
					}
					for gi, g := range res.Groups {
						if len(g) == 0 {
							t.Errorf("n=%d rows=%d cols=%d %s: group %d is empty", n, rows, cols, o, gi)
						}
					}
				}
			}
		}
	}
}

func TestLayoutFrontLoadedSplit(t *testing.T) {
	res := Layout(numberedItems(11), LayoutConfig{Columns: 3, Orientation: Vertical})

	if got, want := groupSizes(res), []int{4, 4, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("group sizes = %v, want %v", got, want)
	}
	if res.ComputedColumns != 3 || res.ComputedRows != 4 {
		t.Errorf("computed = %dx%d, want 4 rows x 3 columns", res.ComputedRows, res.ComputedColumns)
	}
}

func TestLayoutOrientationSwap(t *testing.T) {
	h := Layout(numberedItems(6), LayoutConfig{Columns: 3, Orientation: Horizontal})
	if got, want := groupSizes(h), []int{3, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("horizontal group sizes = %v, want %v", got, want)
	}
	if h.ComputedRows != 2 || h.ComputedColumns != 3 {
		t.Errorf("horizontal computed = %dx%d, want 2x3", h.ComputedRows, h.ComputedColumns)
	}

	v := Layout(numberedItems(6), LayoutConfig{Columns: 3, Orientation: Vertical})
	if got, want := groupSizes(v), []int{2, 2, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("vertical group sizes = %v, want %v", got, want)
	}
	if v.ComputedColumns != 3 || v.ComputedRows != 2 {
		t.Errorf("vertical computed = %d columns x %d rows, want 3x2", v.ComputedColumns, v.ComputedRows)
	}
}

func TestLayoutAutoAxes(t *testing.T) {
	tests := []struct {
		name        string
		orientation Orientation
		wantSizes   []int
	}{
		{"horizontal is one row", Horizontal, []int{4}},
		{"vertical is one column", Vertical, []int{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Layout(numberedItems(4), LayoutConfig{Orientation: tt.orientation})
			if got := groupSizes(res); !reflect.DeepEqual(got, tt.wantSizes) {
				t.Errorf("group sizes = %v, want %v", got, tt.wantSizes)
			}
		})
	}

	h := Layout(numberedItems(4), LayoutConfig{Orientation: Horizontal})
	if h.ComputedColumns != 4 || h.ComputedRows != 1 {
		t.Errorf("horizontal computed = %dx%d, want 1x4", h.ComputedRows, h.ComputedColumns)
	}
	v := Layout(numberedItems(4), LayoutConfig{Orientation: Vertical})
	if v.ComputedColumns != 1 || v.ComputedRows != 4 {
		t.Errorf("vertical computed = %d columns x %d rows, want 1x4", v.ComputedColumns, v.ComputedRows)
	}
}

func TestLayoutRowsOnly(t *testing.T) {
	res := Layout(numberedItems(7), LayoutConfig{Rows: 2, Orientation: Horizontal})
	if got, want := groupSizes(res), []int{4, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("group sizes = %v, want %v", got, want)
	}
	if res.TotalRows != 2 || res.TotalColumns != 4 {
		t.Errorf("totals = %d rows x %d columns, want 2x4", res.TotalRows, res.TotalColumns)
	}
}

func TestLayoutOverflowPages(t *testing.T) {
	res := Layout(numberedItems(10), LayoutConfig{Rows: 2, Columns: 3, Orientation: Horizontal})
	if got, want := groupSizes(res), []int{3, 3, 3, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("group sizes = %v, want %v", got, want)
	}
	if res.TotalRows != 2 {
		t.Errorf("TotalRows = %d, want 2", res.TotalRows)
	}
}

func TestLayoutClamping(t *testing.T) {
	res := Layout(numberedItems(3), LayoutConfig{Rows: 50, Columns: -4, Orientation: Horizontal})
	if got, want := groupSizes(res), []int{1, 1, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("group sizes = %v, want %v", got, want)
	}
}

func TestLayoutEmpty(t *testing.T) {
	res := Layout(nil, LayoutConfig{Rows: 3, Columns: 3})
	if !res.Empty() {
		t.Errorf("Layout(nil) has %d groups, want 0", len(res.Groups))
	}
	if res.ComputedRows != 0 || res.ComputedColumns != 0 {
		t.Errorf("computed = %dx%d, want 0x0", res.ComputedRows, res.ComputedColumns)
	}
}

func TestLayoutIdempotent(t *testing.T) {
	items := numberedItems(13)
	cfg := LayoutConfig{Rows: 2, Columns: 4, Orientation: Vertical, ViewportWidth: 800}
	a := Layout(items, cfg)
	b := Layout(items, cfg)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Layout not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestLayoutCellSize(t *testing.T) {
	res := Layout(numberedItems(4), LayoutConfig{Columns: 4, ViewportWidth: 400})
	if !res.Cell.AutoWidth || res.Cell.WidthPercent != 25 {
		t.Errorf("cell = %+v, want auto width at 25%%", res.Cell)
	}
	if res.Cell.Width != 100 {
		t.Errorf("cell width = %v, want 100", res.Cell.Width)
	}
	if !res.Cell.AutoHeight {
		t.Error("cell height should be auto")
	}

	fixed := Layout(numberedItems(4), LayoutConfig{ColumnWidth: 120, RowHeight: 30})
	if fixed.Cell.AutoWidth || fixed.Cell.Width != 120 || fixed.Cell.Height != 30 {
		t.Errorf("fixed cell = %+v, want 120x30", fixed.Cell)
	}

	vert := Layout(numberedItems(12), LayoutConfig{Rows: 2, Columns: 2, Orientation: Vertical})
	if vert.Cell.WidthPercent != 50 {
		t.Errorf("vertical width = %v%%, want 50%%", vert.Cell.WidthPercent)
	}
}

func TestLayoutCarBrands(t *testing.T) {
	labels := []string{"BMW", "Mercedes", "Honda", "Toyota", "Ferrari"}
	res := Layout(makeItems(labels...), LayoutConfig{Columns: 5, Orientation: Horizontal})

	if len(res.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(res.Groups))
	}
	for i, it := range res.Groups[0] {
		if it.Label != labels[i] {
			t.Errorf("group[0][%d] = %q, want %q", i, it.Label, labels[i])
		}
	}
	if res.ComputedColumns != 5 || res.ComputedRows != 1 {
		t.Errorf("computed = %dx%d, want 1x5", res.ComputedRows, res.ComputedColumns)
	}
}

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		in      string
		want    Orientation
		wantErr bool
	}{
		{"", Horizontal, false},
		{"Horizontal", Horizontal, false},
		{"vertical", Vertical, false},
		{" v ", Vertical, false},
		{"diagonal", Horizontal, true},
	}
	for _, tt := range tests {
		got, err := ParseOrientation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrientation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseOrientation(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
