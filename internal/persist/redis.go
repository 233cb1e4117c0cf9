package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wcatz/chiclet-slicer/internal/slicer"
)

// KeyPrefix namespaces the selection keys in redis.
const KeyPrefix = "chiclet-slicer:selection:"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Instance string
	// TTL expires the saved selection. Zero keeps it forever.
	TTL time.Duration
}

// RedisStore shares the selection of an instance through a redis key.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore connects to redis and checks the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Instance == "" {
		cfg.Instance = "default"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client, key: KeyPrefix + cfg.Instance, ttl: cfg.TTL}, nil
}

// Key returns the redis key holding the selection.
func (s *RedisStore) Key() string { return s.key }

func (s *RedisStore) LoadSelection(ctx context.Context) (slicer.SelectionSnapshot, error) {
	blob, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return decode(ctx, BackendRedis, nil), nil
	}
	if err != nil {
		return loadFailed(ctx, BackendRedis, fmt.Errorf("redis get %s: %w", s.key, err))
	}
	return decode(ctx, BackendRedis, blob), nil
}

func (s *RedisStore) SaveSelection(ctx context.Context, snap slicer.SelectionSnapshot) error {
	blob, err := encode(snap)
	if err != nil {
		return saved(ctx, BackendRedis, snap, err)
	}
	if err := s.client.Set(ctx, s.key, blob, s.ttl).Err(); err != nil {
		return saved(ctx, BackendRedis, snap, fmt.Errorf("redis set %s: %w", s.key, err))
	}
	return saved(ctx, BackendRedis, snap, nil)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Name() string { return BackendRedis }

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
