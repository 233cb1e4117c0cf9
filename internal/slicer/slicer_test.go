package slicer

import (
	"context"
	"reflect"
	"testing"
	"time"

	errs "github.com/wcatz/chiclet-slicer/internal/errors"
	"github.com/wcatz/chiclet-slicer/internal/observability"
)

type countingHooks struct {
	observability.NoopSlicerHooks
	images  int
	layouts int
	noData  int
	changes int
}

func (h *countingHooks) OnExternalImage(context.Context) { h.images++ }
func (h *countingHooks) OnLayout(context.Context, int, int, time.Duration) {
	h.layouts++
}
func (h *countingHooks) OnSelectionChange(context.Context, int) { h.changes++ }
func (h *countingHooks) OnNoData(context.Context, string)       { h.noData++ }

func withHooks(t *testing.T) *countingHooks {
	t.Helper()
	h := &countingHooks{}
	observability.SetSlicerHooks(h)
	t.Cleanup(observability.Reset)
	return h
}

func newCarSlicer(t *testing.T, st Settings, port PersistencePort) *Slicer {
	t.Helper()
	s := New(Options{Settings: st, Persistence: port})
	if _, err := s.Update(context.Background(), carView()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	return s
}

func TestSlicerCarBrands(t *testing.T) {
	s := newCarSlicer(t, Settings{Layout: LayoutConfig{Columns: 5}}, nil)

	st := s.State()
	if st.NoData {
		t.Fatal("NoData set after a valid update")
	}
	if len(st.Groups) != 1 || len(st.Groups[0]) != 5 {
		t.Fatalf("groups = %v, want one group of 5", groupSizes(st.Layout))
	}
	want := []string{"BMW", "Mercedes", "Honda", "Toyota", "Ferrari"}
	for i, tile := range st.Groups[0] {
		if tile.Item.Label != want[i] {
			t.Errorf("tile %d = %q, want %q", i, tile.Item.Label, want[i])
		}
	}
	if st.Layout.ComputedColumns != 5 || st.Layout.ComputedRows != 1 {
		t.Errorf("computed = %dx%d, want 1x5", st.Layout.ComputedRows, st.Layout.ComputedColumns)
	}
}

func TestSlicerClickAndState(t *testing.T) {
	ctx := context.Background()
	port := &memPort{}
	s := newCarSlicer(t, Settings{Selection: SelectionContext{Multiselect: true}}, port)

	honda := s.Items().At(2).Identity
	toyota := s.Items().At(3).Identity
	if !s.Click(ctx, honda, Modifiers{}) {
		t.Fatal("Click(Honda) reported no change")
	}
	if !s.Click(ctx, toyota, Modifiers{}) {
		t.Fatal("Click(Toyota) reported no change")
	}
	s.Hover(toyota)

	st := s.State()
	if got := len(st.Selection.Keys); got != 2 {
		t.Errorf("selected = %d, want 2", got)
	}
	tile := st.Groups[0][3]
	if !tile.Selected || !tile.Hovered || tile.Disabled {
		t.Errorf("Toyota tile = %+v, want selected and hovered", tile)
	}
	if len(port.saved) != 2 {
		t.Errorf("saves = %d, want 2", len(port.saved))
	}

	if !s.ClearAll(ctx) {
		t.Error("ClearAll reported no change")
	}
	if s.Selection().Len() != 0 {
		t.Errorf("selection after ClearAll = %v", keysOf(s.Selection()))
	}
}

func TestSlicerRestoresOnFirstUpdate(t *testing.T) {
	m := NewUUIDMinter("Make")
	set, _ := Convert(carView(), m)
	ferrari := set.At(4).Identity.Key()

	port := &memPort{loaded: SelectionSnapshot{Keys: []string{ferrari}}}
	s := New(Options{Persistence: port, Minter: m})
	if _, err := s.Update(context.Background(), carView()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := keysOf(s.Selection()); !reflect.DeepEqual(got, []string{ferrari}) {
		t.Errorf("restored = %v, want [%s]", got, ferrari)
	}
	if !s.Items().At(4).Selected {
		t.Error("Ferrari not marked selected")
	}
}

func TestSlicerUpdateKeepsSelection(t *testing.T) {
	ctx := context.Background()
	s := newCarSlicer(t, Settings{}, nil)
	bmw := s.Items().At(0).Identity
	s.Click(ctx, bmw, Modifiers{})

	res, err := s.Update(ctx, carView())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.ResetScroll {
		t.Error("identical update reset scroll")
	}
	if !s.Items().At(0).Selected {
		t.Error("selection lost across identical update")
	}

	dv := carView()
	dv.Category.Values = dv.Category.Values[1:]
	dv.Values = nil
	res, _ = s.Update(ctx, dv)
	if !res.ResetScroll {
		t.Error("changed update did not reset scroll")
	}
	if s.Selection().Len() != 0 {
		t.Errorf("selection = %v, want BMW dropped", keysOf(s.Selection()))
	}
}

func TestSlicerNoData(t *testing.T) {
	h := withHooks(t)
	s := newCarSlicer(t, Settings{}, nil)

	res, err := s.Update(context.Background(), &DataView{})
	if !errs.Is(err, errs.ErrCodeNoData) {
		t.Fatalf("Update error = %v, want NO_DATA", err)
	}
	if !res.NoData {
		t.Error("UpdateResult.NoData = false")
	}
	if st := s.State(); !st.NoData || len(st.Groups) != 0 {
		t.Errorf("state = %+v, want no data", st)
	}
	if h.noData != 1 {
		t.Errorf("OnNoData calls = %d, want 1", h.noData)
	}
	if s.Click(context.Background(), "anything", Modifiers{}) {
		t.Error("Click without data reported a change")
	}
}

func TestSlicerExternalImageOnce(t *testing.T) {
	h := withHooks(t)
	dv := carView()
	dv.Image = &ImageColumn{Values: []interface{}{
		"http://x.com/a.png", "http://x.com/a.png", "http://x.com/a.png",
		"http://x.com/a.png", "http://x.com/a.png",
	}}

	s := New(Options{})
	ctx := context.Background()
	s.Update(ctx, dv)
	s.Update(ctx, dv)
	if h.images != 1 {
		t.Errorf("OnExternalImage calls = %d, want 1", h.images)
	}
}

func TestSlicerInlineImageNoTelemetry(t *testing.T) {
	h := withHooks(t)
	dv := carView()
	dv.Image = &ImageColumn{Values: []interface{}{"data:image/gif;base64,AAAA"}}
	s := New(Options{})
	s.Update(context.Background(), dv)
	if h.images != 0 {
		t.Errorf("OnExternalImage calls = %d, want 0", h.images)
	}
	if !s.Items().At(0).HasImage() {
		t.Error("inline image dropped")
	}
}

func TestSlicerForcedSelection(t *testing.T) {
	ctx := context.Background()
	s := newCarSlicer(t, Settings{Selection: SelectionContext{ForcedSelection: true}}, nil)

	if got := s.Selection().Len(); got != 1 {
		t.Fatalf("forced selection = %d items, want 1", got)
	}
	first := s.Items().At(0).Identity
	if !s.Selection().Contains(first) {
		t.Errorf("forced selection = %v, want first item", keysOf(s.Selection()))
	}
	s.ClearAll(ctx)
	s.Click(ctx, first, Modifiers{})
	if s.Selection().Len() == 0 {
		t.Error("forced selection emptied")
	}
}

func TestSlicerForcedSelectionEnabledLater(t *testing.T) {
	s := newCarSlicer(t, Settings{}, nil)
	st := s.Settings()
	st.Selection.ForcedSelection = true
	s.SetSettings(context.Background(), st)
	if s.Selection().Len() != 1 {
		t.Errorf("selection after enabling forced = %v", keysOf(s.Selection()))
	}
}

func TestSlicerSearch(t *testing.T) {
	ctx := context.Background()
	s := newCarSlicer(t, Settings{}, nil)

	if n := s.Search(ctx, "o"); n != 2 {
		t.Errorf("Search(o) = %d, want 2", n)
	}
	if got := labelsOf(s.Layout().Flatten()); !reflect.DeepEqual(got, []string{"Honda", "Toyota"}) {
		t.Errorf("layout = %v, want [Honda Toyota]", got)
	}
	if s.Click(ctx, s.Items().At(0).Identity, Modifiers{}) {
		t.Error("click on filtered item accepted")
	}

	s.Update(ctx, carView())
	if got := s.Layout().Len(); got != 2 {
		t.Errorf("search not kept across update: %d items laid out", got)
	}
}

func TestSlicerStateDoesNotRequestMore(t *testing.T) {
	calls := 0
	s := New(Options{OnNeedMore: func() { calls++ }})
	dv := carView()
	dv.Segmented = true
	if _, err := s.Update(context.Background(), dv); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if calls != 1 {
		t.Fatalf("OnNeedMore after update = %d, want 1", calls)
	}
	for i := 0; i < 5; i++ {
		s.State()
	}
	if calls != 1 {
		t.Errorf("OnNeedMore after reading state = %d, want 1", calls)
	}

	s.Scroll(0)
	if calls != 1 {
		t.Errorf("OnNeedMore after a no-op scroll = %d, want 1", calls)
	}
}

func TestSlicerResizeKeepsScroll(t *testing.T) {
	ctx := context.Background()
	s := newCarSlicer(t, Settings{Layout: LayoutConfig{Rows: 1, Columns: 1}}, nil)
	s.Scroll(3)
	s.Resize(ctx, 500, 300)
	st := s.State()
	if st.Window.Start != 3 {
		t.Errorf("window start after resize = %d, want 3", st.Window.Start)
	}
	if st.Layout.Cell.Width != 500 {
		t.Errorf("cell width = %v, want 500", st.Layout.Cell.Width)
	}

	s.SetSettings(ctx, Settings{Layout: LayoutConfig{Rows: 1, Columns: 1}})
	if w := s.Layout().Cell.Width; w != 500 {
		t.Errorf("cell width after settings change = %v, want viewport kept", w)
	}
}

func TestSlicerShowDisabledBottom(t *testing.T) {
	dv := carView()
	dv.Values[0].Highlights = []interface{}{nil, 1.0, 1.0, nil, 1.0}
	s := New(Options{Settings: Settings{ShowDisabled: ShowDisabledBottom}})
	if _, err := s.Update(context.Background(), dv); err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []string{"Mercedes", "Honda", "Ferrari", "BMW", "Toyota"}
	if got := labelsOf(s.Layout().Flatten()); !reflect.DeepEqual(got, want) {
		t.Errorf("layout = %v, want %v", got, want)
	}
	st := s.State()
	if !st.Groups[0][3].Disabled {
		t.Error("BMW tile not disabled")
	}
}
