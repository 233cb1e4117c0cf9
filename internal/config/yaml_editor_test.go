package config

import (
	"os"
	"strings"
	"testing"

	errs "github.com/wcatz/chiclet-slicer/internal/errors"
)

func TestYAMLEditorSetSettingKeepsComments(t *testing.T) {
	path := writeTestConfig(t, "slicer.yaml", "# top comment\ngeneral:\n  columns: 3 # per row\n")
	e := NewYAMLEditor(path)

	if err := e.SetSetting("general.columns", "5"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := e.SetSetting("header.title", "true"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "# top comment") || !strings.Contains(string(data), "# per row") {
		t.Errorf("comments lost:\n%s", data)
	}

	c, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load after edit: %v\n%s", err, data)
	}
	if c.General.Columns != 5 {
		t.Errorf("columns = %d, want 5", c.General.Columns)
	}
	if c.Header.Title != "true" {
		t.Errorf("title = %q, want the string true", c.Header.Title)
	}
}

func TestYAMLEditorRejectsBadValue(t *testing.T) {
	path := writeTestConfig(t, "slicer.yaml", "general:\n  columns: 3\n")
	err := NewYAMLEditor(path).SetSetting("general.columns", "lots")
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("SetSetting error = %v, want INVALID_CONFIG", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "general:\n  columns: 3\n" {
		t.Errorf("file changed after rejected edit:\n%s", data)
	}
}

func TestYAMLEditorSavedSelection(t *testing.T) {
	path := writeTestConfig(t, "slicer.yaml", "")
	e := NewYAMLEditor(path)

	blob := `{"keys":["a","b"],"inverted":false}`
	if err := e.SetSavedSelection(blob); err != nil {
		t.Fatalf("SetSavedSelection: %v", err)
	}
	got, ok, err := e.GetSetting(SavedSelectionKey)
	if err != nil || !ok || got != blob {
		t.Errorf("GetSetting = %q, %v, %v; want %q", got, ok, err, blob)
	}

	c, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.General.SavedSelection != blob {
		t.Errorf("SavedSelection = %q, want %q", c.General.SavedSelection, blob)
	}

	if err := e.ClearSavedSelection(); err != nil {
		t.Fatalf("ClearSavedSelection: %v", err)
	}
	if err := e.ClearSavedSelection(); err != nil {
		t.Errorf("second ClearSavedSelection: %v", err)
	}
	if _, ok, _ := e.GetSetting(SavedSelectionKey); ok {
		t.Error("saved selection still present")
	}
}

func TestYAMLEditorDeleteMissing(t *testing.T) {
	path := writeTestConfig(t, "slicer.yaml", "general:\n  columns: 3\n")
	err := NewYAMLEditor(path).DeleteSetting("general.rows")
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("DeleteSetting error = %v, want NOT_FOUND", err)
	}
}

func TestSetSettingTOML(t *testing.T) {
	path := writeTestConfig(t, "slicer.toml", "[general]\ncolumns = 3\n")
	if err := SetSetting(path, "general.rows", "4"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	c, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.General.Rows != 4 || c.General.Columns != 3 {
		t.Errorf("general = %+v, want rows 4 columns 3", c.General)
	}

	if err := DeleteSetting(path, "general.rows"); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	c, _ = Load(path, nil)
	if c.General.Rows != 0 {
		t.Errorf("rows = %d after delete, want default 0", c.General.Rows)
	}
}
