package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

// FileStore keeps one JSON file per slicer instance in a directory.
type FileStore struct {
	mu       sync.RWMutex
	baseDir  string
	instance string
}

// NewFileStore creates a file store for instance.
// If baseDir is empty, defaults to ~/.config/chiclet-slicer/selections/
func NewFileStore(baseDir, instance string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "chiclet-slicer", "selections")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create selection dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, instance: instance}, nil
}

// Path returns the selection file of the instance.
func (s *FileStore) Path() string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, s.instance)
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) LoadSelection(ctx context.Context) (slicer.SelectionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return decode(ctx, BackendFile, nil), nil
		}
		return loadFailed(ctx, BackendFile, fmt.Errorf("read selection file: %w", err))
	}
	return decode(ctx, BackendFile, data), nil
}

func (s *FileStore) SaveSelection(ctx context.Context, snap slicer.SelectionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := encode(snap)
	if err != nil {
		return saved(ctx, BackendFile, snap, err)
	}
	if err := os.WriteFile(s.Path(), blob, 0600); err != nil {
		return saved(ctx, BackendFile, snap, fmt.Errorf("write selection file: %w", err))
	}
	return saved(ctx, BackendFile, snap, nil)
}

func (s *FileStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove selection file: %w", err)
	}
	return nil
}

func (s *FileStore) Name() string { return BackendFile }

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
