package slicer

// ShouldResetScroll reports whether two consecutive identity sequences
// differ. An empty side always counts as different.
func ShouldResetScroll(prev, next []Identity) bool {
	if len(prev) == 0 || len(next) == 0 {
		return true
	}
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if prev[i] != next[i] {
			return true
		}
	}
	return false
}

// Window is the range of groups to materialize, Start inclusive and End
// exclusive.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of groups in the window.
func (w Window) Len() int { return w.End - w.Start }

// Reconciler tracks the category identity sequence across updates and
// decides the scroll position and the materialized window of groups.
type Reconciler struct {
	prev   []Identity
	offset int

	// notified and notifiedGroups hold the window and group count of the
	// last OnNeedMore call. notifiedGroups is zero while the window is off
	// the end.
	notified       Window
	notifiedGroups int

	// HasMore reports whether the host can page in more data.
	HasMore func() bool
	// OnNeedMore is called once each time a scroll or layout change moves
	// the window onto the last group and HasMore reports true.
	OnNeedMore func()
}

// Update records the identity sequence of a data update and reports
// whether the scroll position was reset to the top.
func (r *Reconciler) Update(ids []Identity) bool {
	reset := ShouldResetScroll(r.prev, ids)
	r.prev = append(r.prev[:0:0], ids...)
	if reset {
		r.offset = 0
	}
	return reset
}

// Offset returns the current scroll offset in groups.
func (r *Reconciler) Offset() int { return r.offset }

// ScrollTo moves the offset, clamped to the groups of res.
func (r *Reconciler) ScrollTo(res LayoutResult, offset int) {
	r.offset = offset
	r.Sync(res)
}

// ScrollBy moves the offset by delta groups.
func (r *Reconciler) ScrollBy(res LayoutResult, delta int) {
	r.ScrollTo(res, r.offset+delta)
}

// Sync clamps the offset to res after a scroll or relayout. It calls
// OnNeedMore when the resulting window touches the last group and differs
// from the window last reported.
func (r *Reconciler) Sync(res LayoutResult) {
	n := len(res.Groups)
	r.offset = clampOffset(r.offset, pageSize(res), n)
	w := r.Window(res)
	if n == 0 || w.End != n {
		r.notified, r.notifiedGroups = Window{}, 0
		return
	}
	if r.notifiedGroups == n && r.notified == w {
		return
	}
	if r.OnNeedMore == nil || r.HasMore == nil || !r.HasMore() {
		return
	}
	r.notified, r.notifiedGroups = w, n
	r.OnNeedMore()
}

// Window returns the groups to materialize for the current offset.
func (r *Reconciler) Window(res LayoutResult) Window {
	n := len(res.Groups)
	if n == 0 {
		return Window{}
	}
	size := pageSize(res)
	w := Window{Start: clampOffset(r.offset, size, n)}
	w.End = w.Start + size
	if w.End > n {
		w.End = n
	}
	return w
}

func pageSize(res LayoutResult) int {
	if res.TotalRows > 0 {
		return res.TotalRows
	}
	return len(res.Groups)
}

func clampOffset(offset, visible, total int) int {
	limit := total - visible
	if limit < 0 {
		limit = 0
	}
	if offset > limit {
		offset = limit
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
