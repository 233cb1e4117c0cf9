package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/wcatz/chiclet-slicer/internal/config"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

// TileDoc is one tile of an exported layout.
type TileDoc struct {
	Rect
	Label    string   `json:"label"`
	Image    string   `json:"image,omitempty"`
	Value    *float64 `json:"value,omitempty"`
	Selected bool     `json:"selected"`
	Disabled bool     `json:"disabled"`
	Hovered  bool     `json:"hovered,omitempty"`
}

// Document is the exported form of a render state.
type Document struct {
	Header          string                   `json:"header,omitempty"`
	NoData          bool                     `json:"no_data"`
	Orientation     string                   `json:"orientation"`
	TotalRows       int                      `json:"total_rows"`
	TotalColumns    int                      `json:"total_columns"`
	ComputedRows    int                      `json:"computed_rows"`
	ComputedColumns int                      `json:"computed_columns"`
	Cell            slicer.CellSize          `json:"cell"`
	Window          slicer.Window            `json:"window"`
	Groups          [][]TileDoc              `json:"groups"`
	Selection       slicer.SelectionSnapshot `json:"selection"`
}

// BuildDocument converts a render state into an exportable document.
func BuildDocument(st slicer.RenderState, cfg *config.Config) Document {
	doc := Document{
		NoData:          st.NoData,
		Orientation:     st.Layout.Orientation.String(),
		TotalRows:       st.Layout.TotalRows,
		TotalColumns:    st.Layout.TotalColumns,
		ComputedRows:    st.Layout.ComputedRows,
		ComputedColumns: st.Layout.ComputedColumns,
		Cell:            st.Layout.Cell,
		Window:          st.Window,
		Groups:          [][]TileDoc{},
		Selection:       st.Selection,
	}
	if doc.Selection.Keys == nil {
		doc.Selection.Keys = []string{}
	}
	if cfg != nil && cfg.Header.Show {
		doc.Header = cfg.Header.Title
	}

	rects := PlaceTiles(st, NewNodeIndex())
	byGroup := make(map[int][]TileDoc)
	for _, r := range rects {
		tile := st.Groups[r.Group][r.Position]
		td := TileDoc{
			Rect:     r,
			Label:    tile.Item.Label,
			Image:    tile.Item.ImageRef,
			Selected: tile.Selected,
			Disabled: tile.Disabled,
			Hovered:  tile.Hovered,
		}
		if tile.Item.HasValue() && !math.IsNaN(tile.Item.Value) {
			v := tile.Item.Value
			td.Value = &v
		}
		byGroup[r.Group] = append(byGroup[r.Group], td)
	}
	for g := st.Window.Start; g < st.Window.End; g++ {
		doc.Groups = append(doc.Groups, byGroup[g])
	}
	return doc
}

// WriteLayout writes a layout document to a JSON file, returning the size.
// A summary line goes to w.
func WriteLayout(doc Document, fpath string, dryRun bool, w io.Writer) (int, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling layout: %w", err)
	}
	data = append(data, '\n')
	size := len(data)
	tiles := countTiles(doc)
	filename := filepath.Base(fpath)

	if !dryRun {
		if err := os.WriteFile(fpath, data, 0644); err != nil {
			return 0, fmt.Errorf("writing %s: %w", fpath, err)
		}
	}

	fmt.Fprintf(w, "  %s: %d tiles in %d groups, %s bytes\n", filename, tiles, len(doc.Groups), formatSize(size))
	return size, nil
}

func countTiles(doc Document) int {
	n := 0
	for _, g := range doc.Groups {
		n += len(g)
	}
	return n
}

func formatSize(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	s := fmt.Sprintf("%d", n)
	// insert commas
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}
