// Package render draws slicer render states: placed rectangles, a JSON
// layout export, a lipgloss terminal grid and an interactive bubbletea
// browser.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/wcatz/chiclet-slicer/internal/config"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

// Terminal tile widths in cells.
const (
	MinTileWidth     = 4
	DefaultTermWidth = 80
)

// Styles holds the lipgloss styles of the terminal grid.
type Styles struct {
	Header   lipgloss.Style
	Tile     lipgloss.Style
	Selected lipgloss.Style
	Disabled lipgloss.Style
	Status   lipgloss.Style
}

// NewStyles builds styles from the chiclet and header settings.
func NewStyles(cfg *config.Config) Styles {
	if cfg == nil {
		cfg = config.Default()
	}
	ch := cfg.Chiclets
	base := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ch.OutlineColor)).
		Foreground(lipgloss.Color(ch.FontColor))
	if ch.Padding > 0 {
		base = base.Padding(0, 1)
	}
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(cfg.Header.FontColor)).MarginBottom(1),
		Tile:     base,
		Selected: base.Bold(true).Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color(ch.SelectedColor)),
		Disabled: base.Faint(true).Foreground(lipgloss.Color(ch.DisabledColor)),
		Status:   lipgloss.NewStyle().Faint(true),
	}
}

// Terminal renders a render state as a grid of bordered tiles.
type Terminal struct {
	Styles Styles
	// Width is the terminal width in cells.
	Width  int
	Header string
}

// NewTerminal creates a terminal renderer for the given settings.
func NewTerminal(cfg *config.Config, width int) *Terminal {
	if cfg == nil {
		cfg = config.Default()
	}
	if width <= 0 {
		width = DefaultTermWidth
	}
	t := &Terminal{Styles: NewStyles(cfg), Width: width}
	if cfg.Header.Show {
		t.Header = cfg.Header.Title
	}
	return t
}

// Render draws the groups of st inside its window.
func (t *Terminal) Render(st slicer.RenderState) string {
	var b strings.Builder
	if t.Header != "" {
		b.WriteString(t.Styles.Header.Render(t.Header))
		b.WriteString("\n")
	}
	if st.NoData {
		b.WriteString(t.Styles.Status.Render("no data"))
		return b.String()
	}
	if st.Window.Len() == 0 {
		b.WriteString(t.Styles.Status.Render("no matching items"))
		return b.String()
	}

	inner := t.tileWidth(st)
	lines := make([]string, 0, st.Window.Len())
	for g := st.Window.Start; g < st.Window.End; g++ {
		tiles := make([]string, len(st.Groups[g]))
		for i, tile := range st.Groups[g] {
			tiles[i] = t.tile(tile, inner)
		}
		if st.Layout.Orientation == slicer.Vertical {
			lines = append(lines, lipgloss.JoinVertical(lipgloss.Left, tiles...))
		} else {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
		}
	}
	if st.Layout.Orientation == slicer.Vertical {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lines...))
	} else {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return b.String()
}

func (t *Terminal) tile(tile slicer.Tile, inner int) string {
	style := t.Styles.Tile
	switch {
	case tile.Disabled:
		style = t.Styles.Disabled
	case tile.Selected:
		style = t.Styles.Selected
	}
	if tile.Hovered {
		style = style.BorderStyle(lipgloss.ThickBorder())
	}
	label := runewidth.Truncate(tile.Item.Label, inner, "…")
	return style.Width(inner + style.GetHorizontalPadding()).Render(label)
}

// tileWidth is the label width of one tile. Percent widths share the
// terminal width between the visual columns of one page.
func (t *Terminal) tileWidth(st slicer.RenderState) int {
	frame := t.Styles.Tile.GetHorizontalFrameSize()
	cols := 1
	if st.Layout.Cell.WidthPercent > 0 {
		cols = int(100/st.Layout.Cell.WidthPercent + 0.5)
	} else if st.Layout.ComputedColumns > 0 {
		cols = st.Layout.ComputedColumns
	}
	if cols < 1 {
		cols = 1
	}
	w := t.Width/cols - frame
	if w < MinTileWidth {
		w = MinTileWidth
	}
	return w
}
