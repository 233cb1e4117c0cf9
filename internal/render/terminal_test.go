package render

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wcatz/chiclet-slicer/internal/config"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

func TestTerminalRender(t *testing.T) {
	cfg := config.Default()
	cfg.Header.Title = "Makes"
	term := NewTerminal(cfg, 100)

	out := term.Render(stateFor(t, slicer.LayoutConfig{Columns: 5}, "BMW", "Mercedes", "Honda", "Toyota", "Ferrari"))
	for _, want := range []string{"Makes", "BMW", "Ferrari"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestTerminalTruncatesLabels(t *testing.T) {
	term := NewTerminal(nil, 20)
	out := term.Render(stateFor(t, slicer.LayoutConfig{Columns: 2}, "a-very-long-label-indeed", "b"))
	if strings.Contains(out, "a-very-long-label-indeed") {
		t.Errorf("label not truncated:\n%s", out)
	}
	if !strings.Contains(out, "…") {
		t.Errorf("no ellipsis in:\n%s", out)
	}
}

func TestTerminalNoData(t *testing.T) {
	out := NewTerminal(nil, 80).Render(slicer.RenderState{NoData: true})
	if !strings.Contains(out, "no data") {
		t.Errorf("render = %q, want no data", out)
	}
}

func newBrowser(t *testing.T, cfg slicer.Settings, labels ...string) (*Browser, *slicer.Slicer) {
	t.Helper()
	vals := make([]interface{}, len(labels))
	for i, l := range labels {
		vals[i] = l
	}
	s := slicer.New(slicer.Options{Settings: cfg})
	if _, err := s.Update(context.Background(), &slicer.DataView{Category: &slicer.CategoryColumn{Values: vals}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	return NewBrowser(context.Background(), s, nil), s
}

func press(b *Browser, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		b.Update(msg)
	}
}

func TestBrowserSelects(t *testing.T) {
	b, s := newBrowser(t, slicer.Settings{Layout: slicer.LayoutConfig{Columns: 2}}, "a", "b", "c")

	press(b, "right", "enter")
	if got := s.Selection().Keys(); len(got) != 1 || !s.Items().At(1).Selected {
		t.Errorf("selection = %v, want b", got)
	}

	press(b, "down", "a")
	if s.Selection().Len() != 2 {
		t.Errorf("additive press: %d selected, want 2", s.Selection().Len())
	}

	press(b, "c")
	if s.Selection().Len() != 0 {
		t.Errorf("clear: %d selected, want 0", s.Selection().Len())
	}
}

func TestBrowserHoverFollowsCursor(t *testing.T) {
	b, s := newBrowser(t, slicer.Settings{}, "a", "b")
	press(b, "right")
	st := s.State()
	if !st.Groups[0][1].Hovered || st.Groups[0][0].Hovered {
		t.Errorf("hover not on b: %+v", st.Groups[0])
	}
	if !strings.Contains(b.View(), "enter select") {
		t.Error("help line missing from view")
	}
}

func TestBrowserSearch(t *testing.T) {
	b, s := newBrowser(t, slicer.Settings{}, "Honda", "Toyota", "BMW")
	press(b, "/", "o", "t")
	if n := s.Layout().Len(); n != 1 {
		t.Errorf("after typing 'ot': %d laid out, want 1", n)
	}
	press(b, "backspace", "enter")
	if n := s.Layout().Len(); n != 2 {
		t.Errorf("after backspace: %d laid out, want 2", n)
	}
	if b.searching {
		t.Error("enter did not leave search mode")
	}
}
