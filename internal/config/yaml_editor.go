package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	errs "github.com/wcatz/chiclet-slicer/internal/errors"
)

// SavedSelectionKey is the setting that holds the persisted selection blob.
const SavedSelectionKey = "general.saved_selection"

// YAMLEditor provides structured editing of the YAML settings file using
// the yaml.v3 Node API, preserving comments and formatting.
type YAMLEditor struct {
	path string
}

// NewYAMLEditor creates a new editor for the given settings file path.
func NewYAMLEditor(path string) *YAMLEditor {
	return &YAMLEditor{path: path}
}

// SetSetting sets or inserts a "section.key" setting. The value is checked
// against the setting's type before the file is touched.
func (e *YAMLEditor) SetSetting(key, value string) error {
	probe := Default()
	if err := probe.Set(key, value); err != nil {
		return err
	}
	value, _ = probe.Get(key)
	section, name := splitKey(key)

	doc, root, err := e.load()
	if err != nil {
		return err
	}

	sectionNode := findMappingKey(root, section)
	if sectionNode == nil {
		// No such section, create one
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: section},
			&yaml.Node{Kind: yaml.MappingNode},
		)
		sectionNode = root.Content[len(root.Content)-1]
	}
	if sectionNode.Kind != yaml.MappingNode {
		return errs.New(errs.ErrCodeInvalidConfig, "section '%s' is not a mapping", section)
	}

	tag := yamlTag(key)
	style := yaml.Style(0)
	if key == SavedSelectionKey {
		style = yaml.DoubleQuotedStyle
	}

	valNode := findMappingKey(sectionNode, name)
	if valNode != nil {
		valNode.Kind = yaml.ScalarNode
		valNode.Value = value
		valNode.Tag = tag
		valNode.Style = style
		valNode.Content = nil
	} else {
		sectionNode.Content = append(sectionNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value, Tag: tag, Style: style},
		)
	}

	return e.save(doc)
}

// DeleteSetting removes a "section.key" setting from the file.
func (e *YAMLEditor) DeleteSetting(key string) error {
	section, name := splitKey(key)

	doc, root, err := e.load()
	if err != nil {
		return err
	}

	sectionNode := findMappingKey(root, section)
	if sectionNode == nil {
		return errs.New(errs.ErrCodeNotFound, "no %s section in config", section)
	}

	idx := findMappingKeyIndex(sectionNode, name)
	if idx < 0 {
		return errs.New(errs.ErrCodeNotFound, "setting '%s' not found", key)
	}

	// Remove the key-value pair (2 consecutive entries in Content)
	sectionNode.Content = append(sectionNode.Content[:idx], sectionNode.Content[idx+2:]...)

	return e.save(doc)
}

// GetSetting returns the raw scalar stored for key.
func (e *YAMLEditor) GetSetting(key string) (string, bool, error) {
	section, name := splitKey(key)

	_, root, err := e.load()
	if err != nil {
		return "", false, err
	}
	sectionNode := findMappingKey(root, section)
	if sectionNode == nil {
		return "", false, nil
	}
	valNode := findMappingKey(sectionNode, name)
	if valNode == nil || valNode.Kind != yaml.ScalarNode {
		return "", false, nil
	}
	return valNode.Value, true, nil
}

// SetSavedSelection stores the selection blob.
func (e *YAMLEditor) SetSavedSelection(blob string) error {
	return e.SetSetting(SavedSelectionKey, blob)
}

// ClearSavedSelection removes the selection blob. A missing blob is not an error.
func (e *YAMLEditor) ClearSavedSelection() error {
	err := e.DeleteSetting(SavedSelectionKey)
	if errs.Is(err, errs.ErrCodeNotFound) {
		return nil
	}
	return err
}

func (e *YAMLEditor) load() (*yaml.Node, *yaml.Node, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parsing config")
	}

	// An empty file decodes to a zero node; start a fresh document.
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil, errs.New(errs.ErrCodeInvalidConfig, "invalid YAML document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil, errs.New(errs.ErrCodeInvalidConfig, "root is not a mapping")
	}

	return &doc, root, nil
}

func (e *YAMLEditor) save(doc *yaml.Node) error {
	out, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("opening config for write: %w", err)
	}
	defer out.Close()

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// SetSetting edits one setting of the file at path. YAML files are edited in
// place; TOML files are decoded, changed and re-encoded.
func SetSetting(path, key, value string) error {
	if FormatFromPath(path) == FormatYAML {
		return NewYAMLEditor(path).SetSetting(key, value)
	}
	c, err := Load(path, nil)
	if err != nil {
		return err
	}
	if err := c.Set(key, value); err != nil {
		return err
	}
	return c.writeTo(path)
}

// DeleteSetting resets one setting of the file at path. TOML files get the
// default value written back.
func DeleteSetting(path, key string) error {
	if FormatFromPath(path) == FormatYAML {
		return NewYAMLEditor(path).DeleteSetting(key)
	}
	c, err := Load(path, nil)
	if err != nil {
		return err
	}
	def, ok := Default().Get(key)
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "unknown setting '%s'", key)
	}
	if err := c.Set(key, def); err != nil {
		return err
	}
	return c.writeTo(path)
}

func (c *Config) writeTo(path string) error {
	data, err := c.Encode(FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func splitKey(key string) (string, string) {
	section, name, ok := strings.Cut(key, ".")
	if !ok {
		return key, ""
	}
	return section, name
}

// findMappingKey finds the value node for a key in a MappingNode.
func findMappingKey(mapping *yaml.Node, key string) *yaml.Node {
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// findMappingKeyIndex returns the index of a key in a MappingNode's Content, or -1.
func findMappingKeyIndex(mapping *yaml.Node, key string) int {
	if mapping.Kind != yaml.MappingNode {
		return -1
	}
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return i
		}
	}
	return -1
}
