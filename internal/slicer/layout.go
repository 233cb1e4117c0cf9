package slicer

import (
	"fmt"
	"strings"
)

// MaxCount is the largest row or column count a layout accepts.
const MaxCount = 1000

// Orientation selects the primary fill direction of the grid.
type Orientation int

const (
	// Horizontal fills across columns, one row at a time. Each group is a row.
	Horizontal Orientation = iota
	// Vertical fills down, one column at a time. Each group is a column.
	Vertical
)

// String returns the settings name of the orientation.
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return fmt.Sprintf("orientation(%d)", int(o))
}

// ParseOrientation parses a settings value. Empty means Horizontal.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown orientation %q", s)
}

// LayoutConfig is the per-pass input of Layout. Zero counts and sizes mean auto.
type LayoutConfig struct {
	Rows           int
	Columns        int
	Orientation    Orientation
	RowHeight      float64
	ColumnWidth    float64
	ViewportWidth  float64
	ViewportHeight float64
}

// CellSize is the derived size of one chiclet.
type CellSize struct {
	// WidthPercent is set when the column width is auto.
	WidthPercent float64 `json:"width_percent,omitempty"`
	// Width is the fixed width, or the viewport share when auto and the
	// viewport width is known.
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	AutoWidth  bool    `json:"auto_width"`
	AutoHeight bool    `json:"auto_height"`
}

// LayoutResult is the partition of items into groups.
//
// TotalRows is the number of groups shown per page and TotalColumns the
// maximum number of items per group, both after the orientation swap.
// ComputedRows and ComputedColumns describe the realized visual grid.
type LayoutResult struct {
	Orientation     Orientation
	Groups          [][]*Item
	TotalRows       int
	TotalColumns    int
	ComputedRows    int
	ComputedColumns int
	Cell            CellSize
}

// Len returns the number of laid-out items.
func (r LayoutResult) Len() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g)
	}
	return n
}

// Flatten returns the items of all groups in order.
func (r LayoutResult) Flatten() []*Item {
	out := make([]*Item, 0, r.Len())
	for _, g := range r.Groups {
		out = append(out, g...)
	}
	return out
}

// Empty reports whether the layout has no groups.
func (r LayoutResult) Empty() bool {
	return len(r.Groups) == 0
}

// Layout partitions items into groups according to cfg. It is deterministic
// and never fails; items must already exclude filtered entries.
func Layout(items []*Item, cfg LayoutConfig) LayoutResult {
	res := LayoutResult{Orientation: cfg.Orientation}
	total := len(items)
	if total == 0 {
		return res
	}

	rows := clampCount(cfg.Rows, total)
	cols := clampCount(cfg.Columns, total)

	totalColumns, totalRows := resolveAxes(total, rows, cols, cfg.Orientation)
	if cfg.Orientation == Vertical {
		totalRows, totalColumns = totalColumns, totalRows
	}
	res.TotalRows = totalRows
	res.TotalColumns = totalColumns

	if cfg.Orientation == Vertical && rows == 0 && cols > 0 && total%cols != 0 {
		res.Groups = splitFrontLoaded(items, cols)
	} else {
		res.Groups = chunk(items, totalColumns)
	}

	longest := 0
	for _, g := range res.Groups {
		if len(g) > longest {
			longest = len(g)
		}
	}
	switch cfg.Orientation {
	case Vertical:
		res.ComputedColumns = len(res.Groups)
		res.ComputedRows = longest
	default:
		res.ComputedColumns = longest
		res.ComputedRows = len(res.Groups)
	}

	res.Cell = cellSize(cfg, res)
	return res
}

func clampCount(n, total int) int {
	if n < 0 {
		return 0
	}
	if n > total {
		return total
	}
	return n
}

// resolveAxes returns (columns, rows) before the orientation swap.
func resolveAxes(total, rows, cols int, o Orientation) (int, int) {
	switch {
	case rows == 0 && cols == 0:
		switch o {
		case Vertical:
			return 1, total
		default:
			return total, 1
		}
	case cols == 0:
		return ceilDiv(total, rows), rows
	case rows == 0:
		return cols, ceilDiv(total, cols)
	default:
		return cols, rows
	}
}

// splitFrontLoaded divides items into n contiguous groups whose sizes differ
// by at most one, larger groups first.
func splitFrontLoaded(items []*Item, n int) [][]*Item {
	size := len(items) / n
	extra := len(items) % n
	groups := make([][]*Item, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < extra {
			end++
		}
		groups = append(groups, items[start:end:end])
		start = end
	}
	return groups
}

// chunk splits items into contiguous groups of size, the last one possibly short.
func chunk(items []*Item, size int) [][]*Item {
	if size <= 0 {
		size = len(items)
	}
	groups := make([][]*Item, 0, ceilDiv(len(items), size))
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		groups = append(groups, items[start:end:end])
	}
	return groups
}

func cellSize(cfg LayoutConfig, res LayoutResult) CellSize {
	var c CellSize
	if cfg.ColumnWidth > 0 {
		c.Width = cfg.ColumnWidth
	} else if n := realColumnCount(res); n > 0 {
		c.AutoWidth = true
		c.WidthPercent = 100 / float64(n)
		if cfg.ViewportWidth > 0 {
			c.Width = cfg.ViewportWidth / float64(n)
		}
	}
	if cfg.RowHeight > 0 {
		c.Height = cfg.RowHeight
	} else {
		c.AutoHeight = true
	}
	return c
}

// realColumnCount is the number of visual columns on one page.
func realColumnCount(res LayoutResult) int {
	switch res.Orientation {
	case Vertical:
		n := len(res.Groups)
		if res.TotalRows > 0 && n > res.TotalRows {
			n = res.TotalRows
		}
		return n
	default:
		return res.ComputedColumns
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
