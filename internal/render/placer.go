package render

import "github.com/wcatz/chiclet-slicer/internal/slicer"

// DefaultTileWidth and DefaultTileHeight size auto tiles when the viewport
// is unknown.
const (
	DefaultTileWidth  = 100
	DefaultTileHeight = 25
)

// Rect is the placed rectangle of one tile.
type Rect struct {
	Node     int             `json:"node"`
	Identity slicer.Identity `json:"identity"`
	Group    int             `json:"group"`
	Position int             `json:"position"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	W        float64         `json:"w"`
	H        float64         `json:"h"`
}

// Placer positions tiles with a cursor that wraps at Width. It works along
// the fill direction: for vertical layouts the caller swaps axes.
type Placer struct {
	Width     float64
	cursorX   float64
	cursorY   float64
	rowHeight float64
}

// NewPlacer creates a placer that wraps at width. Zero never wraps.
func NewPlacer(width float64) *Placer {
	return &Placer{Width: width}
}

// Reset resets the cursor for a new layout.
func (p *Placer) Reset() {
	p.cursorX = 0
	p.cursorY = 0
	p.rowHeight = 0
}

// Place positions a tile and returns its (x, y) coordinates.
func (p *Placer) Place(width, height float64) (float64, float64) {
	if p.Width > 0 && p.cursorX > 0 && p.cursorX+width > p.Width {
		p.NewLine()
	}
	x := p.cursorX
	y := p.cursorY
	p.cursorX += width
	if height > p.rowHeight {
		p.rowHeight = height
	}
	return x, y
}

// NewLine advances past the tallest tile in the current line.
func (p *Placer) NewLine() {
	if p.cursorX > 0 {
		p.cursorY += p.rowHeight
		p.cursorX = 0
		p.rowHeight = 0
	}
}

// Extent returns the size covered so far, finishing the current line.
func (p *Placer) Extent() (float64, float64) {
	p.NewLine()
	return p.Width, p.cursorY
}

// PlaceTiles lays out the groups of st inside its window as rectangles.
// Each group occupies one line of the fill direction. Node ids come from
// index, which maps them back to items.
func PlaceTiles(st slicer.RenderState, index *NodeIndex) []Rect {
	if st.NoData || st.Window.Len() == 0 {
		return nil
	}
	w, h := tileSize(st.Layout.Cell)
	vertical := st.Layout.Orientation == slicer.Vertical

	// Along the fill direction a group never wraps; the placer only tracks
	// the lines. Vertical groups are columns, so sizes swap.
	major, minor := w, h
	if vertical {
		major, minor = h, w
	}
	p := NewPlacer(0)

	var rects []Rect
	for g := st.Window.Start; g < st.Window.End; g++ {
		for _, tile := range st.Groups[g] {
			a, b := p.Place(major, minor)
			r := Rect{
				Node:     index.Next(tile.Item),
				Identity: tile.Item.Identity,
				Group:    g,
				Position: tile.Position,
				X:        a,
				Y:        b,
				W:        w,
				H:        h,
			}
			if vertical {
				r.X, r.Y = b, a
			}
			rects = append(rects, r)
		}
		p.NewLine()
	}
	return rects
}

func tileSize(c slicer.CellSize) (float64, float64) {
	w := c.Width
	if w <= 0 {
		w = DefaultTileWidth
	}
	h := c.Height
	if h <= 0 {
		h = DefaultTileHeight
	}
	return w, h
}
