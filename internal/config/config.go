package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/wcatz/chiclet-slicer/internal/errors"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

// Format is the encoding of a settings file.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

func (f Format) String() string {
	if f == FormatTOML {
		return "toml"
	}
	return "yaml"
}

// FormatFromPath picks the format from the file extension. Anything that is
// not .toml is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// GeneralSettings holds the layout and selection behavior.
type GeneralSettings struct {
	Orientation     string `yaml:"orientation" toml:"orientation" json:"orientation"`
	Columns         int    `yaml:"columns" toml:"columns" json:"columns"`
	Rows            int    `yaml:"rows" toml:"rows" json:"rows"`
	ShowDisabled    string `yaml:"show_disabled" toml:"show_disabled" json:"show_disabled"`
	Multiselect     bool   `yaml:"multiselect" toml:"multiselect" json:"multiselect"`
	ForcedSelection bool   `yaml:"forced_selection" toml:"forced_selection" json:"forced_selection"`
	SavedSelection  string `yaml:"saved_selection,omitempty" toml:"saved_selection,omitempty" json:"saved_selection,omitempty"`
}

// HeaderSettings controls the optional title above the tiles.
type HeaderSettings struct {
	Show      bool    `yaml:"show" toml:"show" json:"show"`
	Title     string  `yaml:"title" toml:"title" json:"title"`
	FontColor string  `yaml:"font_color" toml:"font_color" json:"font_color"`
	TextSize  float64 `yaml:"text_size" toml:"text_size" json:"text_size"`
}

// ChicletSettings controls the look of a tile. Zero Height or Width means auto.
type ChicletSettings struct {
	TextSize      float64 `yaml:"text_size" toml:"text_size" json:"text_size"`
	Height        float64 `yaml:"height" toml:"height" json:"height"`
	Width         float64 `yaml:"width" toml:"width" json:"width"`
	Padding       float64 `yaml:"padding" toml:"padding" json:"padding"`
	FontColor     string  `yaml:"font_color" toml:"font_color" json:"font_color"`
	Background    string  `yaml:"background" toml:"background" json:"background"`
	SelectedColor string  `yaml:"selected_color" toml:"selected_color" json:"selected_color"`
	DisabledColor string  `yaml:"disabled_color" toml:"disabled_color" json:"disabled_color"`
	OutlineColor  string  `yaml:"outline_color" toml:"outline_color" json:"outline_color"`
	Condensed     bool    `yaml:"condensed" toml:"condensed" json:"condensed"`
}

// ImageSettings controls how item images share the tile with the label.
type ImageSettings struct {
	ImageSplit int  `yaml:"image_split" toml:"image_split" json:"image_split"`
	Stretch    bool `yaml:"stretch" toml:"stretch" json:"stretch"`
	Bottom     bool `yaml:"bottom" toml:"bottom" json:"bottom"`
}

// Config holds the entire settings file.
type Config struct {
	General  GeneralSettings `yaml:"general" toml:"general" json:"general"`
	Header   HeaderSettings  `yaml:"header" toml:"header" json:"header"`
	Chiclets ChicletSettings `yaml:"chiclets" toml:"chiclets" json:"chiclets"`
	Images   ImageSettings   `yaml:"images" toml:"images" json:"images"`

	path string
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		General: GeneralSettings{
			Orientation:  slicer.Horizontal.String(),
			Columns:      3,
			ShowDisabled: slicer.ShowDisabledInplace.String(),
		},
		Header: HeaderSettings{
			Show:      true,
			FontColor: "#000000",
			TextSize:  10,
		},
		Chiclets: ChicletSettings{
			TextSize:      10,
			Height:        25,
			Padding:       3,
			FontColor:     "#666666",
			Background:    "#ffffff",
			SelectedColor: "#bdd7ee",
			DisabledColor: "#808080",
			OutlineColor:  "#cccccc",
		},
		Images: ImageSettings{ImageSplit: 50},
	}
}

// Load reads and parses a settings file. Overrides are "section.key" to
// value pairs applied after parsing, as given on the command line.
func Load(path string, overrides map[string]string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	c, err := loadFromData(data, FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	c.path = path
	if err := c.apply(overrides); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFromBytes parses settings from raw bytes (for validation).
func LoadFromBytes(data []byte, format Format) (*Config, error) {
	return loadFromData(data, format)
}

func loadFromData(data []byte, format Format) (*Config, error) {
	c := Default()
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), c); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parsing config")
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parsing config")
		}
	}
	return c, nil
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

func (c *Config) apply(overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, overrides[k]); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns every settable "section.key" name in sorted order.
func Keys() []string {
	c := Default()
	keys := make([]string, 0, len(c.fields()))
	for k := range c.fields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Config) fields() map[string]interface{} {
	return map[string]interface{}{
		"general.orientation":      &c.General.Orientation,
		"general.columns":          &c.General.Columns,
		"general.rows":             &c.General.Rows,
		"general.show_disabled":    &c.General.ShowDisabled,
		"general.multiselect":      &c.General.Multiselect,
		"general.forced_selection": &c.General.ForcedSelection,
		"general.saved_selection":  &c.General.SavedSelection,
		"header.show":              &c.Header.Show,
		"header.title":             &c.Header.Title,
		"header.font_color":        &c.Header.FontColor,
		"header.text_size":         &c.Header.TextSize,
		"chiclets.text_size":       &c.Chiclets.TextSize,
		"chiclets.height":          &c.Chiclets.Height,
		"chiclets.width":           &c.Chiclets.Width,
		"chiclets.padding":         &c.Chiclets.Padding,
		"chiclets.font_color":      &c.Chiclets.FontColor,
		"chiclets.background":      &c.Chiclets.Background,
		"chiclets.selected_color":  &c.Chiclets.SelectedColor,
		"chiclets.disabled_color":  &c.Chiclets.DisabledColor,
		"chiclets.outline_color":   &c.Chiclets.OutlineColor,
		"chiclets.condensed":       &c.Chiclets.Condensed,
		"images.image_split":       &c.Images.ImageSplit,
		"images.stretch":           &c.Images.Stretch,
		"images.bottom":            &c.Images.Bottom,
	}
}

// Set parses value into the setting named by key ("section.key").
func (c *Config) Set(key, value string) error {
	f, ok := c.fields()[key]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "unknown setting '%s'", key)
	}
	switch p := f.(type) {
	case *string:
		*p = value
	case *int:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "setting '%s' wants an integer", key)
		}
		*p = n
	case *float64:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "setting '%s' wants a number", key)
		}
		*p = n
	case *bool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "setting '%s' wants true or false", key)
		}
		*p = b
	}
	return nil
}

// Get returns the setting named by key formatted as a string.
func (c *Config) Get(key string) (string, bool) {
	f, ok := c.fields()[key]
	if !ok {
		return "", false
	}
	switch p := f.(type) {
	case *string:
		return *p, true
	case *int:
		return strconv.Itoa(*p), true
	case *float64:
		return strconv.FormatFloat(*p, 'g', -1, 64), true
	case *bool:
		return strconv.FormatBool(*p), true
	}
	return "", false
}

// yamlTag returns the YAML tag for an edited scalar. Strings are tagged so a
// value such as "true" stays a string; other kinds resolve from the value.
func yamlTag(key string) string {
	if _, ok := Default().fields()[key].(*string); ok {
		return "!!str"
	}
	return ""
}

// Validate reports every setting outside its accepted range.
func (c *Config) Validate() error {
	var problems []string
	if _, err := slicer.ParseOrientation(c.General.Orientation); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := slicer.ParseShowDisabled(c.General.ShowDisabled); err != nil {
		problems = append(problems, err.Error())
	}
	if c.General.Columns < 0 || c.General.Columns > slicer.MaxCount {
		problems = append(problems, fmt.Sprintf("columns %d outside 0..%d", c.General.Columns, slicer.MaxCount))
	}
	if c.General.Rows < 0 || c.General.Rows > slicer.MaxCount {
		problems = append(problems, fmt.Sprintf("rows %d outside 0..%d", c.General.Rows, slicer.MaxCount))
	}
	if c.Images.ImageSplit < 0 || c.Images.ImageSplit > 100 {
		problems = append(problems, fmt.Sprintf("image_split %d outside 0..100", c.Images.ImageSplit))
	}
	if c.Chiclets.Height < 0 || c.Chiclets.Width < 0 || c.Chiclets.Padding < 0 {
		problems = append(problems, "chiclet height, width and padding must not be negative")
	}
	if len(problems) > 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}

// Normalize clamps every setting into its accepted range and replaces
// unknown enumerations with their defaults.
func (c *Config) Normalize() {
	o, err := slicer.ParseOrientation(c.General.Orientation)
	if err != nil {
		o = slicer.Horizontal
	}
	c.General.Orientation = o.String()

	sd, err := slicer.ParseShowDisabled(c.General.ShowDisabled)
	if err != nil {
		sd = slicer.ShowDisabledInplace
	}
	c.General.ShowDisabled = sd.String()

	c.General.Columns = clampInt(c.General.Columns, 0, slicer.MaxCount)
	c.General.Rows = clampInt(c.General.Rows, 0, slicer.MaxCount)
	c.Images.ImageSplit = clampInt(c.Images.ImageSplit, 0, 100)
	c.Chiclets.Height = clampFloat(c.Chiclets.Height)
	c.Chiclets.Width = clampFloat(c.Chiclets.Width)
	c.Chiclets.Padding = clampFloat(c.Chiclets.Padding)
	if c.Chiclets.TextSize <= 0 {
		c.Chiclets.TextSize = Default().Chiclets.TextSize
	}
}

// Settings returns the slicer view of the normalized settings.
func (c *Config) Settings() slicer.Settings {
	n := *c
	n.Normalize()
	o, _ := slicer.ParseOrientation(n.General.Orientation)
	sd, _ := slicer.ParseShowDisabled(n.General.ShowDisabled)
	return slicer.Settings{
		Layout: slicer.LayoutConfig{
			Rows:        n.General.Rows,
			Columns:     n.General.Columns,
			Orientation: o,
			RowHeight:   n.Chiclets.Height,
			ColumnWidth: n.Chiclets.Width,
		},
		Selection: slicer.SelectionContext{
			Multiselect:     n.General.Multiselect,
			ForcedSelection: n.General.ForcedSelection,
		},
		ShowDisabled: sd,
	}
}

// Encode serializes the config in the given format.
func (c *Config) Encode(format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, fmt.Errorf("encoding config: %w", err)
		}
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, fmt.Errorf("encoding config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding config: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
