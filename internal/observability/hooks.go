// Package observability provides hooks for telemetry events emitted by the
// slicer without tying the core to a backend.
//
// Register hooks once at startup:
//
//	observability.SetSlicerHooks(&myHooks{})
//
// The core calls them as events happen:
//
//	observability.Slicer().OnExternalImage(ctx)
package observability

import (
	"context"
	"sync"
	"time"
)

// SlicerHooks receives events from a slicer instance.
type SlicerHooks interface {
	// OnExternalImage fires at most once per instance, the first time an
	// item references an absolute ftp/http/https image.
	OnExternalImage(ctx context.Context)

	// OnLayout records a completed layout pass.
	OnLayout(ctx context.Context, items, groups int, duration time.Duration)

	// OnSelectionChange records an accepted selection change.
	OnSelectionChange(ctx context.Context, selected int)

	// OnNoData records an update that carried no usable category data.
	OnNoData(ctx context.Context, reason string)
}

// StoreHooks receives events from selection persistence backends.
type StoreHooks interface {
	OnLoad(ctx context.Context, backend string, keys int, err error)
	OnSave(ctx context.Context, backend string, keys int, err error)
}

// NoopSlicerHooks ignores every event.
type NoopSlicerHooks struct{}

func (NoopSlicerHooks) OnExternalImage(context.Context)                  {}
func (NoopSlicerHooks) OnLayout(context.Context, int, int, time.Duration) {}
func (NoopSlicerHooks) OnSelectionChange(context.Context, int)           {}
func (NoopSlicerHooks) OnNoData(context.Context, string)                 {}

// NoopStoreHooks ignores every event.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, int, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, int, error) {}

var (
	slicerHooks SlicerHooks = NoopSlicerHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	hooksMu     sync.RWMutex
)

// SetSlicerHooks registers slicer hooks. Nil is ignored.
func SetSlicerHooks(h SlicerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		slicerHooks = h
	}
}

// SetStoreHooks registers store hooks. Nil is ignored.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Slicer returns the registered slicer hooks.
func Slicer() SlicerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return slicerHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	slicerHooks = NoopSlicerHooks{}
	storeHooks = NoopStoreHooks{}
}
