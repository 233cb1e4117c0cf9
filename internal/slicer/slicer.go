// Package slicer implements the chiclet slicer core: item sets built from a
// host data view, the tile layout engine, the selection state machine and
// the scroll/visibility reconciler.
//
// A Slicer is not safe for concurrent use. Hosts that receive events from
// several goroutines must serialize calls, so a data update finishes
// rebuilding the item set before a queued click is applied to it.
package slicer

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wcatz/chiclet-slicer/internal/observability"
)

// Settings is the normalized view of the visual settings used by the core.
type Settings struct {
	Layout       LayoutConfig
	Selection    SelectionContext
	ShowDisabled ShowDisabled
}

// Options configures a Slicer.
type Options struct {
	Settings    Settings
	Persistence PersistencePort
	Minter      IdentityMinter
	Logger      *log.Logger
	// OnNeedMore is called when the visible window reaches the end of a
	// segmented data view.
	OnNeedMore func()
}

// Tile is the render state of one item.
type Tile struct {
	Item     *Item
	Group    int
	Position int
	Selected bool
	Disabled bool
	Hovered  bool
}

// RenderState is what a rendering adapter draws.
type RenderState struct {
	NoData    bool
	Layout    LayoutResult
	Window    Window
	Groups    [][]Tile
	Selection SelectionSnapshot
}

// UpdateResult describes the effect of a data update.
type UpdateResult struct {
	NoData      bool
	ResetScroll bool
	Items       int
	Groups      int
}

// Slicer is one visual instance.
type Slicer struct {
	settings   Settings
	set        *ItemSet
	layout     LayoutResult
	machine    *Machine
	reconciler Reconciler
	images     ImageTracker
	minter     IdentityMinter
	logger     *log.Logger

	search      string
	hovered     Identity
	restored    bool
	segmented   bool
	noData      bool
	viewportSet bool
}

// New creates a Slicer with no data.
func New(opts Options) *Slicer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Slicer{
		settings: opts.Settings,
		machine:  NewMachine(opts.Settings.Selection, opts.Persistence, logger),
		minter:   opts.Minter,
		logger:   logger,
		noData:   true,
	}
	s.reconciler.HasMore = func() bool { return s.segmented }
	s.reconciler.OnNeedMore = opts.OnNeedMore
	return s
}

// Update rebuilds the item set from dv and reruns layout. A view without
// category data clears the slicer and returns a NO_DATA error.
func (s *Slicer) Update(ctx context.Context, dv *DataView) (UpdateResult, error) {
	set, err := Convert(dv, s.minter)
	if err != nil {
		s.set = nil
		s.layout = LayoutResult{Orientation: s.settings.Layout.Orientation}
		s.noData = true
		s.reconciler.Update(nil)
		s.reconciler.Sync(s.layout)
		observability.Slicer().OnNoData(ctx, err.Error())
		return UpdateResult{NoData: true, ResetScroll: true}, err
	}

	s.set = set
	s.noData = false
	s.segmented = dv.Segmented
	if s.images.Observe(set.Items()) {
		observability.Slicer().OnExternalImage(ctx)
	}
	ApplySearch(set, s.search)

	if !s.restored {
		s.machine.Restore(ctx, set)
		s.restored = true
	} else {
		s.machine.Rebind(ctx, set)
	}

	reset := s.reconciler.Update(set.Identities())
	s.relayout(ctx)
	return UpdateResult{
		ResetScroll: reset,
		Items:       s.layout.Len(),
		Groups:      len(s.layout.Groups),
	}, nil
}

// Resize records the viewport size and reruns layout without resetting scroll.
func (s *Slicer) Resize(ctx context.Context, width, height float64) {
	s.settings.Layout.ViewportWidth = width
	s.settings.Layout.ViewportHeight = height
	s.viewportSet = true
	s.relayout(ctx)
}

// SetSettings replaces the settings. The current viewport is kept once a
// resize has been delivered.
func (s *Slicer) SetSettings(ctx context.Context, st Settings) {
	if s.viewportSet {
		st.Layout.ViewportWidth = s.settings.Layout.ViewportWidth
		st.Layout.ViewportHeight = s.settings.Layout.ViewportHeight
	}
	s.settings = st
	s.machine.SetContext(st.Selection)
	if s.set != nil {
		s.machine.Rebind(ctx, s.set)
	}
	s.relayout(ctx)
}

// Settings returns the settings in use.
func (s *Slicer) Settings() Settings { return s.settings }

// Search filters items by label and reruns layout.
func (s *Slicer) Search(ctx context.Context, text string) int {
	s.search = text
	if s.set == nil {
		return 0
	}
	n := ApplySearch(s.set, text)
	s.relayout(ctx)
	return n
}

// Click applies a click on the item with the given identity.
func (s *Slicer) Click(ctx context.Context, id Identity, mod Modifiers) bool {
	if s.set == nil {
		return false
	}
	return s.machine.Apply(ctx, s.set, ClassifyClick(id, mod, s.settings.Selection))
}

// ClearAll empties the selection unless forced selection is on.
func (s *Slicer) ClearAll(ctx context.Context) bool {
	if s.set == nil {
		return false
	}
	return s.machine.Apply(ctx, s.set, ClearAll())
}

// Hover marks id as hovered. An empty identity clears the hover.
func (s *Slicer) Hover(id Identity) {
	s.hovered = id
}

// Scroll moves the visible window by delta groups.
func (s *Slicer) Scroll(delta int) {
	s.reconciler.ScrollBy(s.layout, delta)
}

// Items returns the current item set, nil without data.
func (s *Slicer) Items() *ItemSet { return s.set }

// Layout returns the current layout.
func (s *Slicer) Layout() LayoutResult { return s.layout }

// Selection returns the current selection.
func (s *Slicer) Selection() Selection { return s.machine.Selection() }

// State returns the render state for the current layout and selection.
func (s *Slicer) State() RenderState {
	st := RenderState{
		NoData:    s.noData,
		Layout:    s.layout,
		Selection: s.machine.Selection().Snapshot(),
	}
	if s.noData {
		return st
	}
	st.Window = s.reconciler.Window(s.layout)
	st.Groups = make([][]Tile, len(s.layout.Groups))
	for g, group := range s.layout.Groups {
		tiles := make([]Tile, len(group))
		for p, it := range group {
			tiles[p] = Tile{
				Item:     it,
				Group:    g,
				Position: p,
				Selected: it.Selected,
				Disabled: !it.Selectable,
				Hovered:  s.hovered != "" && it.Identity == s.hovered,
			}
		}
		st.Groups[g] = tiles
	}
	return st
}

func (s *Slicer) relayout(ctx context.Context) {
	if s.set == nil {
		return
	}
	start := time.Now()
	items := Arrange(s.set.Visible(), s.settings.ShowDisabled)
	s.layout = Layout(items, s.settings.Layout)
	s.reconciler.Sync(s.layout)
	observability.Slicer().OnLayout(ctx, s.layout.Len(), len(s.layout.Groups), time.Since(start))
	s.logger.Debug("layout",
		"items", s.layout.Len(),
		"rows", s.layout.ComputedRows,
		"columns", s.layout.ComputedColumns,
		"orientation", s.layout.Orientation)
}
