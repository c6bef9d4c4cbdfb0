// internal/infrastructure/database/redis/snapshots.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore persists cart and wishlist snapshots as Redis string values.
// It implements the snapshot port of both stores.
type SnapshotStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSnapshotStore creates a snapshot store writing under the given key
// prefix with the given retention
func NewSnapshotStore(client *redis.Client, prefix string, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Load reads a snapshot. A missing key returns nil bytes and no error.
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return data, nil
}

// Save writes a snapshot, refreshing its retention
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Delete drops a snapshot. Deleting a missing key is a no-op.
func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}
