package persist

import (
	"context"
	"sync"

	"github.com/wcatz/chiclet-slicer/internal/config"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

// ConfigStore keeps the selection in the saved_selection setting of the
// settings file, next to the rest of the slicer settings.
type ConfigStore struct {
	mu   sync.Mutex
	path string
}

// NewConfigStore creates a store backed by the settings file at path.
func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path}
}

func (s *ConfigStore) LoadSelection(ctx context.Context) (slicer.SelectionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := config.Load(s.path, nil)
	if err != nil {
		return loadFailed(ctx, BackendConfig, err)
	}
	return decode(ctx, BackendConfig, []byte(c.General.SavedSelection)), nil
}

func (s *ConfigStore) SaveSelection(ctx context.Context, snap slicer.SelectionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := encode(snap)
	if err != nil {
		return saved(ctx, BackendConfig, snap, err)
	}
	return saved(ctx, BackendConfig, snap, config.SetSetting(s.path, config.SavedSelectionKey, string(blob)))
}

func (s *ConfigStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if config.FormatFromPath(s.path) == config.FormatYAML {
		return config.NewYAMLEditor(s.path).ClearSavedSelection()
	}
	return config.DeleteSetting(s.path, config.SavedSelectionKey)
}

func (s *ConfigStore) Name() string { return BackendConfig }

func (s *ConfigStore) Close() error { return nil }

var _ Store = (*ConfigStore)(nil)
