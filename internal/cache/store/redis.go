package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

const redisSnapshotKey = "analytics:snapshot:" + dashboardKey

// Redis persists the dashboard snapshot as a single JSON value. No key
// expiry is set: an aged snapshot must survive its TTL so the stale-fallback
// path can still serve it.
type Redis struct {
	rdb *redis.Client
}

// NewRedis creates a Redis-backed snapshot store and verifies connectivity
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

// Load retrieves the persisted snapshot. A missing key or an unparsable
// payload is a cache miss.
func (r *Redis) Load(ctx context.Context) (*entity.Snapshot, error) {
	payload, err := r.rdb.Get(ctx, redisSnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot from redis: %w", err)
	}

	var snap entity.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, nil
	}
	return &snap, nil
}

// Save replaces the persisted snapshot
func (r *Redis) Save(ctx context.Context, snap *entity.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := r.rdb.Set(ctx, redisSnapshotKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("saving snapshot to redis: %w", err)
	}
	return nil
}

// Delete removes the persisted snapshot if present
func (r *Redis) Delete(ctx context.Context) error {
	if err := r.rdb.Del(ctx, redisSnapshotKey).Err(); err != nil {
		return fmt.Errorf("deleting snapshot from redis: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (r *Redis) Close() error {
	return r.rdb.Close()
}
