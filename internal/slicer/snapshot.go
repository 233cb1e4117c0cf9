package slicer

import (
	"bytes"
	"context"
	"encoding/json"
)

// SelectionSnapshot is the persisted form of a selection.
type SelectionSnapshot struct {
	Keys     []string `json:"keys"`
	Inverted bool     `json:"inverted"`
}

// Empty reports whether the snapshot selects nothing.
func (s SelectionSnapshot) Empty() bool {
	return len(s.Keys) == 0
}

// PersistencePort loads and saves the selection between sessions.
type PersistencePort interface {
	LoadSelection(ctx context.Context) (SelectionSnapshot, error)
	SaveSelection(ctx context.Context, snap SelectionSnapshot) error
}

// EncodeSnapshot serializes a snapshot to its blob form.
func EncodeSnapshot(s SelectionSnapshot) ([]byte, error) {
	if s.Keys == nil {
		s.Keys = []string{}
	}
	return json.Marshal(s)
}

// DecodeSnapshot parses a blob. Anything unreadable decodes to an empty
// snapshot. A bare JSON array of keys is accepted as well.
func DecodeSnapshot(blob []byte) SelectionSnapshot {
	blob = bytes.TrimSpace(blob)
	if len(blob) == 0 {
		return SelectionSnapshot{}
	}
	if blob[0] == '[' {
		var keys []string
		if err := json.Unmarshal(blob, &keys); err != nil {
			return SelectionSnapshot{}
		}
		return SelectionSnapshot{Keys: compactKeys(keys)}
	}
	var s SelectionSnapshot
	if err := json.Unmarshal(blob, &s); err != nil {
		return SelectionSnapshot{}
	}
	s.Keys = compactKeys(s.Keys)
	return s
}

// compactKeys drops empty and repeated keys, keeping first occurrences.
func compactKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
