package slicer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/wcatz/chiclet-slicer/internal/observability"
)

// EventKind identifies a selection gesture.
type EventKind int

const (
	EventClick EventKind = iota
	EventClickAdditive
	EventClickRange
	EventClearAll
	EventLoad
)

func (k EventKind) String() string {
	switch k {
	case EventClick:
		return "click"
	case EventClickAdditive:
		return "click-additive"
	case EventClickRange:
		return "click-range"
	case EventClearAll:
		return "clear-all"
	case EventLoad:
		return "load"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one input to the selection reducer.
type Event struct {
	Kind     EventKind
	Target   Identity
	Snapshot SelectionSnapshot
}

func Click(id Identity) Event         { return Event{Kind: EventClick, Target: id} }
func ClickAdditive(id Identity) Event { return Event{Kind: EventClickAdditive, Target: id} }
func ClickRange(id Identity) Event    { return Event{Kind: EventClickRange, Target: id} }
func ClearAll() Event                 { return Event{Kind: EventClearAll} }
func Load(s SelectionSnapshot) Event  { return Event{Kind: EventLoad, Snapshot: s} }

// Modifiers are the keys held during a click.
type Modifiers struct {
	Ctrl bool
	Meta bool
	Alt  bool
}

// SelectionContext carries the selection settings for one invocation.
type SelectionContext struct {
	Multiselect     bool
	ForcedSelection bool
}

// ClassifyClick maps a click with modifiers to a selection event. Alt selects
// a range when multiselect is on; ctrl, meta or the multiselect setting make
// the click additive.
func ClassifyClick(id Identity, mod Modifiers, sc SelectionContext) Event {
	switch {
	case mod.Alt && sc.Multiselect:
		return ClickRange(id)
	case mod.Ctrl || mod.Meta || sc.Multiselect:
		return ClickAdditive(id)
	default:
		return Click(id)
	}
}

// Selection is an ordered set of selected identities. The zero value is empty.
type Selection struct {
	keys     []Identity
	inverted bool
}

// NewSelection returns a selection of ids in order, dropping repeats.
func NewSelection(inverted bool, ids ...Identity) Selection {
	s := Selection{inverted: inverted}
	for _, id := range ids {
		if !s.Contains(id) {
			s.keys = append(s.keys, id)
		}
	}
	return s
}

// Len returns the number of selected identities.
func (s Selection) Len() int { return len(s.keys) }

// Inverted reports the carried inverted-filter flag.
func (s Selection) Inverted() bool { return s.inverted }

// Keys returns a copy of the selected identities in selection order.
func (s Selection) Keys() []Identity {
	out := make([]Identity, len(s.keys))
	copy(out, s.keys)
	return out
}

// Contains reports whether id is selected.
func (s Selection) Contains(id Identity) bool {
	for _, k := range s.keys {
		if k == id {
			return true
		}
	}
	return false
}

// Snapshot returns the persisted form of the selection.
func (s Selection) Snapshot() SelectionSnapshot {
	keys := make([]string, len(s.keys))
	for i, k := range s.keys {
		keys[i] = k.Key()
	}
	return SelectionSnapshot{Keys: keys, Inverted: s.inverted}
}

func (s Selection) equal(o Selection) bool {
	if s.inverted != o.inverted || len(s.keys) != len(o.keys) {
		return false
	}
	for i := range s.keys {
		if s.keys[i] != o.keys[i] {
			return false
		}
	}
	return true
}

func (s Selection) without(id Identity) Selection {
	out := Selection{inverted: s.inverted}
	for _, k := range s.keys {
		if k != id {
			out.keys = append(out.keys, k)
		}
	}
	return out
}

// Reduce applies ev to cur and returns the next selection. The second result
// is false when the event was rejected or changed nothing. Reduce does not
// touch the items.
func Reduce(set *ItemSet, cur Selection, ev Event, sc SelectionContext) (Selection, bool) {
	next, ok := reduce(set, cur, ev, sc)
	if !ok {
		return cur, false
	}
	if sc.ForcedSelection && next.Len() == 0 {
		if first, found := set.FirstSelectable(); found {
			next = NewSelection(next.inverted, first.Identity)
		}
	}
	if next.equal(cur) {
		return cur, false
	}
	return next, true
}

func reduce(set *ItemSet, cur Selection, ev Event, sc SelectionContext) (Selection, bool) {
	switch ev.Kind {
	case EventClick:
		if _, ok := clickable(set, ev.Target); !ok {
			return cur, false
		}
		if cur.Len() == 1 && cur.keys[0] == ev.Target {
			if sc.ForcedSelection {
				return cur, false
			}
			return Selection{inverted: cur.inverted}, true
		}
		return NewSelection(cur.inverted, ev.Target), true

	case EventClickAdditive:
		if _, ok := clickable(set, ev.Target); !ok {
			return cur, false
		}
		if cur.Contains(ev.Target) {
			return cur.without(ev.Target), true
		}
		next := NewSelection(cur.inverted, cur.keys...)
		next.keys = append(next.keys, ev.Target)
		return next, true

	case EventClickRange:
		if !sc.Multiselect {
			return reduce(set, cur, Click(ev.Target), sc)
		}
		target, ok := clickable(set, ev.Target)
		if !ok {
			return cur, false
		}
		lo, hi := rangeAnchor(set, cur), target.Ordinal
		if lo > hi {
			lo, hi = hi, lo
		}
		next := Selection{inverted: cur.inverted}
		for i := lo; i <= hi; i++ {
			it := set.At(i)
			if it.Selectable && !it.FilteredOut {
				next.keys = append(next.keys, it.Identity)
			}
		}
		return next, true

	case EventClearAll:
		if sc.ForcedSelection {
			return cur, false
		}
		return Selection{inverted: cur.inverted}, true

	case EventLoad:
		if ev.Snapshot.Empty() {
			return cur, true
		}
		next := Selection{inverted: ev.Snapshot.Inverted}
		for _, key := range ev.Snapshot.Keys {
			id := Identity(key)
			if _, ok := set.Lookup(id); ok && !next.Contains(id) {
				next.keys = append(next.keys, id)
			}
		}
		return next, true
	}
	return cur, false
}

func clickable(set *ItemSet, id Identity) (*Item, bool) {
	it, ok := set.Lookup(id)
	if !ok || !it.Selectable || it.FilteredOut {
		return nil, false
	}
	return it, true
}

// rangeAnchor returns the highest ordinal currently selected, or 0.
func rangeAnchor(set *ItemSet, cur Selection) int {
	anchor := -1
	for _, k := range cur.keys {
		if it, ok := set.Lookup(k); ok && it.Ordinal > anchor {
			anchor = it.Ordinal
		}
	}
	if anchor < 0 {
		return 0
	}
	return anchor
}

// Machine owns the current selection of a slicer instance, applies events,
// writes Item.Selected and persists accepted changes.
type Machine struct {
	sc     SelectionContext
	sel    Selection
	port   PersistencePort
	logger *log.Logger
}

// NewMachine creates a machine. port may be nil.
func NewMachine(sc SelectionContext, port PersistencePort, logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.Default()
	}
	return &Machine{sc: sc, port: port, logger: logger}
}

// Context returns the selection settings in use.
func (m *Machine) Context() SelectionContext { return m.sc }

// SetContext replaces the selection settings for later events.
func (m *Machine) SetContext(sc SelectionContext) { m.sc = sc }

// Selection returns the current selection.
func (m *Machine) Selection() Selection { return m.sel }

// Apply reduces ev against set. Accepted changes are written to the items
// and saved; rejected events keep the selection and save nothing.
func (m *Machine) Apply(ctx context.Context, set *ItemSet, ev Event) bool {
	next, changed := Reduce(set, m.sel, ev, m.sc)
	if !changed {
		m.logger.Debug("selection unchanged", "event", ev.Kind, "target", ev.Target)
		m.sync(set)
		return false
	}
	m.commit(ctx, set, next)
	return true
}

// Restore loads the persisted snapshot and applies it as a Load event. A
// failing port counts as no saved selection.
func (m *Machine) Restore(ctx context.Context, set *ItemSet) bool {
	var snap SelectionSnapshot
	if m.port != nil {
		s, err := m.port.LoadSelection(ctx)
		if err != nil {
			m.logger.Warn("loading saved selection", "err", err)
		} else {
			snap = s
		}
	}
	return m.Apply(ctx, set, Load(snap))
}

// Rebind reconciles the selection with a freshly built set: keys missing
// from it are dropped and the forced-selection invariant is re-applied.
func (m *Machine) Rebind(ctx context.Context, set *ItemSet) bool {
	next := Selection{inverted: m.sel.inverted}
	for _, k := range m.sel.keys {
		if _, ok := set.Lookup(k); ok {
			next.keys = append(next.keys, k)
		}
	}
	if m.sc.ForcedSelection && next.Len() == 0 {
		if first, ok := set.FirstSelectable(); ok {
			next = NewSelection(next.inverted, first.Identity)
		}
	}
	if next.equal(m.sel) {
		m.sync(set)
		return false
	}
	m.commit(ctx, set, next)
	return true
}

func (m *Machine) commit(ctx context.Context, set *ItemSet, next Selection) {
	m.sel = next
	m.sync(set)
	observability.Slicer().OnSelectionChange(ctx, next.Len())
	if m.port == nil {
		return
	}
	if err := m.port.SaveSelection(ctx, next.Snapshot()); err != nil {
		m.logger.Warn("saving selection", "err", err)
	}
}

func (m *Machine) sync(set *ItemSet) {
	for _, it := range set.Items() {
		it.Selected = m.sel.Contains(it.Identity)
	}
}
