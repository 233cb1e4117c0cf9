package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type countingHooks struct {
	NoopSlicerHooks
	images int
}

func (c *countingHooks) OnExternalImage(context.Context) { c.images++ }

func TestSetSlicerHooks(t *testing.T) {
	defer Reset()

	h := &countingHooks{}
	SetSlicerHooks(h)
	Slicer().OnExternalImage(context.Background())
	if h.images != 1 {
		t.Errorf("images = %d, want 1", h.images)
	}

	SetSlicerHooks(nil)
	if Slicer() != SlicerHooks(h) {
		t.Error("SetSlicerHooks(nil) should keep the registered hooks")
	}

	Reset()
	if _, ok := Slicer().(NoopSlicerHooks); !ok {
		t.Errorf("after Reset, Slicer() = %T, want NoopSlicerHooks", Slicer())
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(l)
	ctx := context.Background()

	h.OnExternalImage(ctx)
	h.OnLayout(ctx, 5, 1, time.Millisecond)
	h.OnSave(ctx, "file", 2, nil)

	out := buf.String()
	for _, want := range []string{"external image link observed", "layout", "selection saved"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
