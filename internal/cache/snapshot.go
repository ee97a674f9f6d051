package cache

import (
	"context"
	"time"

	"github.com/vadim/contentpulse/internal/domain/analytics/dao"
	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

// SnapshotCache is the durable snapshot tier. Freshness is judged against the
// snapshot's own ComputedAt stamp, so an expired snapshot stays in the store
// and remains available for stale fallback until replaced.
type SnapshotCache struct {
	store dao.SnapshotStore
	ttl   time.Duration
	now   func() time.Time
}

// NewSnapshotCache wraps a snapshot store with TTL semantics
func NewSnapshotCache(store dao.SnapshotStore, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Fresh returns the persisted snapshot if it exists and is within TTL,
// (nil, nil) otherwise.
func (c *SnapshotCache) Fresh(ctx context.Context) (*entity.Snapshot, error) {
	snap, err := c.store.Load(ctx)
	if err != nil || snap == nil {
		return nil, err
	}
	if snap.Age(c.now()) > c.ttl {
		return nil, nil
	}
	return snap, nil
}

// Stale returns the persisted snapshot regardless of TTL, (nil, nil) when
// nothing is persisted. Used as the fallback when recomputation fails.
func (c *SnapshotCache) Stale(ctx context.Context) (*entity.Snapshot, error) {
	return c.store.Load(ctx)
}

// Put persists a freshly computed snapshot
func (c *SnapshotCache) Put(ctx context.Context, snap *entity.Snapshot) error {
	return c.store.Save(ctx, snap)
}

// Clear removes the persisted snapshot
func (c *SnapshotCache) Clear(ctx context.Context) error {
	return c.store.Delete(ctx)
}
