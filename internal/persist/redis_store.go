package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the snapshot as one JSON value under a single key.
// Last-writer-wins, matching the single-writer consistency model of the
// aggregate itself.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a RedisStore. The connection is lazy; the first
// Save/Load surfaces connectivity errors.
func NewRedisStore(addr string, db int, key string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		key: key,
	}
}

// Save overwrites the document. No TTL: league history is kept forever.
func (r *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis_store.Save: marshal: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis_store.Save: set %s: %w", r.key, err)
	}
	return nil
}

// Load fetches the document, or returns (nil, nil) when the key is unset.
func (r *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis_store.Load: get %s: %w", r.key, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("redis_store.Load: unmarshal: %w", err)
	}
	snap.Normalize()
	return &snap, nil
}

// Close releases the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
