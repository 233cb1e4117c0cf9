// Package persist provides selection persistence backends for the slicer:
//   - memory: in-process storage for tests and the HTTP adapter default
//   - file: one JSON file per slicer instance, for CLI sessions
//   - config: the saved_selection setting of the settings file
//   - redis: a shared key for instances behind a load balancer
//
// Every backend stores the same JSON blob produced by
// slicer.EncodeSnapshot, and an unreadable blob loads as no selection.
package persist

import (
	"context"
	"fmt"
	"time"

	errs "github.com/wcatz/chiclet-slicer/internal/errors"
	"github.com/wcatz/chiclet-slicer/internal/observability"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

// Store is a selection persistence backend.
type Store interface {
	slicer.PersistencePort

	// Clear removes the saved selection.
	Clear(ctx context.Context) error

	// Name identifies the backend in logs and telemetry.
	Name() string

	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendConfig = "config"
	BackendRedis  = "redis"
)

// DefaultInstance names the slicer when no instance is given.
const DefaultInstance = "default"

// InstanceName returns name, or DefaultInstance when name is empty. Item
// identities are minted in this namespace, so every entry point sharing a
// store must mint with it to restore the saved keys.
func InstanceName(name string) string {
	if name == "" {
		return DefaultInstance
	}
	return name
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Instance names the slicer whose selection is stored.
	Instance string
	// Dir is the file backend directory. Empty means the user config dir.
	Dir string
	// ConfigPath is the settings file of the config backend.
	ConfigPath string
	// RedisAddr, RedisPassword, RedisDB and TTL configure the redis backend.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Open creates the backend named by opts.Backend. Empty means memory.
func Open(ctx context.Context, opts Options) (Store, error) {
	opts.Instance = InstanceName(opts.Instance)
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(opts.Dir, opts.Instance)
	case BackendConfig:
		if opts.ConfigPath == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "config backend needs a settings file")
		}
		return NewConfigStore(opts.ConfigPath), nil
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Instance: opts.Instance,
			TTL:      opts.TTL,
		})
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "unknown persistence backend '%s'", opts.Backend)
}

// decode turns a stored blob into a snapshot and reports the load.
func decode(ctx context.Context, backend string, blob []byte) slicer.SelectionSnapshot {
	snap := slicer.DecodeSnapshot(blob)
	observability.Store().OnLoad(ctx, backend, len(snap.Keys), nil)
	return snap
}

// encode serializes a snapshot for storage.
func encode(snap slicer.SelectionSnapshot) ([]byte, error) {
	blob, err := slicer.EncodeSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("encode selection: %w", err)
	}
	return blob, nil
}

func loadFailed(ctx context.Context, backend string, err error) (slicer.SelectionSnapshot, error) {
	observability.Store().OnLoad(ctx, backend, 0, err)
	return slicer.SelectionSnapshot{}, err
}

func saved(ctx context.Context, backend string, snap slicer.SelectionSnapshot, err error) error {
	observability.Store().OnSave(ctx, backend, len(snap.Keys), err)
	return err
}
