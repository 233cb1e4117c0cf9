package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports slicer and store events to a logger.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to l, or to log.Default() when l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

func (h *LogHooks) OnExternalImage(ctx context.Context) {
	h.Logger.Info("external image link observed")
}

func (h *LogHooks) OnLayout(ctx context.Context, items, groups int, d time.Duration) {
	h.Logger.Debug("layout", "items", items, "groups", groups, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnSelectionChange(ctx context.Context, selected int) {
	h.Logger.Debug("selection changed", "selected", selected)
}

func (h *LogHooks) OnNoData(ctx context.Context, reason string) {
	h.Logger.Warn("no data", "reason", reason)
}

func (h *LogHooks) OnLoad(ctx context.Context, backend string, keys int, err error) {
	if err != nil {
		h.Logger.Warn("selection load failed", "backend", backend, "err", err)
		return
	}
	h.Logger.Debug("selection loaded", "backend", backend, "keys", keys)
}

func (h *LogHooks) OnSave(ctx context.Context, backend string, keys int, err error) {
	if err != nil {
		h.Logger.Warn("selection save failed", "backend", backend, "err", err)
		return
	}
	h.Logger.Debug("selection saved", "backend", backend, "keys", keys)
}

var (
	_ SlicerHooks = (*LogHooks)(nil)
	_ StoreHooks  = (*LogHooks)(nil)
)
