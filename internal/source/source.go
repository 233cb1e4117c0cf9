// Package source reads host data views from JSON, YAML or TOML files.
//
// A data file holds one category column and optional image and value
// columns:
//
//	category:
//	  name: Make
//	  values: [BMW, Mercedes, Honda]
//	values:
//	  - name: Sales
//	    values: [120, 80, 30]
//	    highlights: [120, null, 30]
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/wcatz/chiclet-slicer/internal/errors"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

// Format is the encoding of a data file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unsupported data file '%s'", path)
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unsupported data format '%s'", s)
}

// Load reads a data view from path.
func Load(path string) (*slicer.DataView, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	return Parse(data, format)
}

// Read decodes a data view from r.
func Read(r io.Reader, format Format) (*slicer.DataView, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes a data view. Numbers decoded from JSON keep their exact
// text until conversion.
func Parse(data []byte, format Format) (*slicer.DataView, error) {
	var dv slicer.DataView
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&dv); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parsing json data")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &dv); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parsing yaml data")
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &dv); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parsing toml data")
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unsupported data format '%s'", format)
	}
	return &dv, nil
}
