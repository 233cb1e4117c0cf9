package persist

import (
	"context"
	"sync"

	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

// MemoryStore keeps the selection blob in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	blob []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadSelection(ctx context.Context) (slicer.SelectionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decode(ctx, BackendMemory, s.blob), nil
}

func (s *MemoryStore) SaveSelection(ctx context.Context, snap slicer.SelectionSnapshot) error {
	blob, err := encode(snap)
	if err != nil {
		return saved(ctx, BackendMemory, snap, err)
	}
	s.mu.Lock()
	s.blob = blob
	s.mu.Unlock()
	return saved(ctx, BackendMemory, snap, nil)
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = nil
	return nil
}

// Blob returns a copy of the stored blob.
func (s *MemoryStore) Blob() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.blob...)
}

func (s *MemoryStore) Name() string { return BackendMemory }

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
