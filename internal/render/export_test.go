package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wcatz/chiclet-slicer/internal/config"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

func TestBuildDocument(t *testing.T) {
	cfg := config.Default()
	cfg.Header.Title = "Makes"
	st := stateFor(t, slicer.LayoutConfig{Columns: 5}, "BMW", "Mercedes", "Honda", "Toyota", "Ferrari")

	doc := BuildDocument(st, cfg)
	if doc.Header != "Makes" {
		t.Errorf("Header = %q, want Makes", doc.Header)
	}
	if len(doc.Groups) != 1 || len(doc.Groups[0]) != 5 {
		t.Fatalf("groups = %v, want one group of 5", doc.Groups)
	}
	if doc.ComputedColumns != 5 || doc.ComputedRows != 1 {
		t.Errorf("computed = %dx%d, want 1x5", doc.ComputedRows, doc.ComputedColumns)
	}
	if doc.Groups[0][4].Label != "Ferrari" || doc.Groups[0][4].Node != 5 {
		t.Errorf("last tile = %+v", doc.Groups[0][4])
	}
	if doc.Groups[0][0].Value != nil {
		t.Error("tile without a measure exported a value")
	}
	if doc.Selection.Keys == nil {
		t.Error("selection keys exported as null")
	}
}

func TestBuildDocumentHiddenHeader(t *testing.T) {
	cfg := config.Default()
	cfg.Header.Title = "Makes"
	cfg.Header.Show = false
	doc := BuildDocument(stateFor(t, slicer.LayoutConfig{}, "a"), cfg)
	if doc.Header != "" {
		t.Errorf("Header = %q, want hidden", doc.Header)
	}
}

func TestWriteLayout(t *testing.T) {
	doc := BuildDocument(stateFor(t, slicer.LayoutConfig{Columns: 2}, "a", "b", "c"), nil)
	path := filepath.Join(t.TempDir(), "layout.json")
	var out bytes.Buffer

	size, err := WriteLayout(doc, path, false, &out)
	if err != nil {
		t.Fatalf("WriteLayout: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading layout: %v", err)
	}
	if len(data) != size {
		t.Errorf("size = %d, file has %d bytes", size, len(data))
	}

	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("layout is not valid JSON: %v", err)
	}
	if back.Orientation != "horizontal" || len(back.Groups) != 2 {
		t.Errorf("decoded = %+v", back)
	}
	if !strings.Contains(out.String(), "layout.json: 3 tiles in 2 groups") {
		t.Errorf("summary = %q", out.String())
	}
}

func TestWriteLayoutDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	var out bytes.Buffer
	if _, err := WriteLayout(Document{}, path, true, &out); err != nil {
		t.Fatalf("WriteLayout: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("dry run wrote the file")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
