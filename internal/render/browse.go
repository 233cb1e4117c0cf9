package render

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wcatz/chiclet-slicer/internal/config"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

const browseHelp = "←↑↓→ move · enter select · a add · r range · c clear · / search · q quit"

// Browser is an interactive bubbletea host for one slicer. The cursor is the
// hovered tile; key presses stand in for mouse gestures.
type Browser struct {
	ctx  context.Context
	s    *slicer.Slicer
	term *Terminal

	group int
	pos   int

	searching bool
	query     string
	status    string
}

// NewBrowser creates a browser over a slicer that already holds data.
func NewBrowser(ctx context.Context, s *slicer.Slicer, cfg *config.Config) *Browser {
	b := &Browser{ctx: ctx, s: s, term: NewTerminal(cfg, 0)}
	b.hover()
	return b
}

func (b *Browser) Init() tea.Cmd {
	return nil
}

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.term.Width = msg.Width
		b.s.Resize(b.ctx, float64(msg.Width), float64(msg.Height))
		return b, nil
	case tea.KeyMsg:
		if b.searching {
			b.searchKey(msg)
			return b, nil
		}
		return b, b.key(msg.String())
	}
	return b, nil
}

func (b *Browser) key(k string) tea.Cmd {
	vertical := b.s.Layout().Orientation == slicer.Vertical
	switch k {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "left", "h":
		b.move(vertical, -1)
	case "right", "l":
		b.move(vertical, 1)
	case "up", "k":
		b.move(!vertical, -1)
	case "down", "j":
		b.move(!vertical, 1)
	case "pgdown":
		b.page(1)
	case "pgup":
		b.page(-1)
	case "enter", " ":
		b.click(slicer.Modifiers{})
	case "a":
		b.click(slicer.Modifiers{Ctrl: true})
	case "r":
		b.click(slicer.Modifiers{Alt: true})
	case "c":
		if b.s.ClearAll(b.ctx) {
			b.status = "selection cleared"
		} else {
			b.status = "selection kept"
		}
	case "/":
		b.searching = true
		b.status = ""
	}
	return nil
}

func (b *Browser) searchKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		b.searching = false
	case tea.KeyBackspace:
		if r := []rune(b.query); len(r) > 0 {
			b.query = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		b.query += string(msg.Runes)
	default:
		return
	}
	n := b.s.Search(b.ctx, b.query)
	b.status = fmt.Sprintf("%d matching", n)
	b.group, b.pos = 0, 0
	b.hover()
}

// move steps the cursor inside a group when across is false, or between
// groups when it is true.
func (b *Browser) move(across bool, delta int) {
	groups := b.s.Layout().Groups
	if len(groups) == 0 {
		return
	}
	if across {
		b.group = clamp(b.group+delta, 0, len(groups)-1)
		b.follow()
	} else {
		b.pos += delta
	}
	b.pos = clamp(b.pos, 0, len(groups[b.group])-1)
	b.hover()
}

func (b *Browser) page(delta int) {
	res := b.s.Layout()
	size := res.TotalRows
	if size <= 0 {
		size = len(res.Groups)
	}
	b.move(true, delta*size)
}

// follow scrolls the window so the cursor group is visible.
func (b *Browser) follow() {
	w := b.s.State().Window
	switch {
	case b.group < w.Start:
		b.s.Scroll(b.group - w.Start)
	case b.group >= w.End:
		b.s.Scroll(b.group - w.End + 1)
	}
}

func (b *Browser) current() (*slicer.Item, bool) {
	groups := b.s.Layout().Groups
	if b.group >= len(groups) || b.pos >= len(groups[b.group]) {
		return nil, false
	}
	return groups[b.group][b.pos], true
}

func (b *Browser) hover() {
	if it, ok := b.current(); ok {
		b.s.Hover(it.Identity)
		return
	}
	b.s.Hover("")
}

func (b *Browser) click(mod slicer.Modifiers) {
	it, ok := b.current()
	if !ok {
		return
	}
	if b.s.Click(b.ctx, it.Identity, mod) {
		b.status = fmt.Sprintf("%d selected", b.s.Selection().Len())
	} else {
		b.status = fmt.Sprintf("%s not selectable", it.Label)
	}
}

func (b *Browser) View() string {
	var sb strings.Builder
	sb.WriteString(b.term.Render(b.s.State()))
	sb.WriteString("\n\n")
	if b.searching {
		sb.WriteString("search: " + b.query + "▏")
	} else {
		sb.WriteString(b.term.Styles.Status.Render(browseHelp))
	}
	if b.status != "" {
		sb.WriteString("\n" + b.term.Styles.Status.Render(b.status))
	}
	return sb.String()
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

var _ tea.Model = (*Browser)(nil)
