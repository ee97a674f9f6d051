package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vadim/contentpulse/internal/cache"
	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
	"github.com/vadim/contentpulse/internal/domain/analytics/timeseries"
)

// SnapshotComputer defines the interface for the aggregation service.
// This interface is defined here (consumer) not in the service package (provider).
type SnapshotComputer interface {
	BuildSnapshot(ctx context.Context) (*entity.Snapshot, error)
	ResolveAuthorName(ctx context.Context, id string) string
}

// Policy orchestrates dashboard use-cases: the cache read path, recomputation
// under a deadline, write-back into both tiers, stale fallback and refresh.
type Policy struct {
	svc          SnapshotComputer
	memo         *cache.Memo
	snapshots    *cache.SnapshotCache
	deadline     time.Duration
	defaultRange string
	logger       *slog.Logger
}

// New creates a new dashboard policy
func New(svc SnapshotComputer, memo *cache.Memo, snapshots *cache.SnapshotCache, deadline time.Duration, defaultRange string, logger *slog.Logger) *Policy {
	return &Policy{
		svc:          svc,
		memo:         memo,
		snapshots:    snapshots,
		deadline:     deadline,
		defaultRange: defaultRange,
		logger:       logger,
	}
}

// DashboardInput represents the request parameters for the composed dashboard
type DashboardInput struct {
	Range string `json:"range"` // all | past-year | past-6-months
}

// DashboardOutput is the composed analytics result handed to the
// presentation layer. Stale marks a result served from an expired snapshot
// after a failed recompute.
type DashboardOutput struct {
	Stats             entity.Stats       `json:"stats"`
	Charts            entity.ChartSeries `json:"charts"`
	ScheduledEntries  []entity.Entry     `json:"scheduled_entries"`
	RecentlyPublished []entity.Entry     `json:"recently_published_entries"`
	StaleEntries      []entity.Entry     `json:"stale_entries"`
	AuthorNames       map[string]string  `json:"author_names"`
	ComputedAt        time.Time          `json:"computed_at"`
	Stale             bool               `json:"stale"`
}

// Dashboard returns the composed analytics result. Read path: request memo,
// then the durable snapshot tier, then a full recompute under the configured
// deadline. A failed recompute falls back to the last persisted snapshot, if
// any, flagged stale; with no snapshot at all the failure propagates.
func (p *Policy) Dashboard(ctx context.Context, in DashboardInput) (*DashboardOutput, error) {
	rng, months := p.normalizeRange(in.Range)
	key := cache.Signature(DashboardInput{Range: rng})

	if snap, ok := p.memo.Get(key); ok {
		return compose(snap, months, false), nil
	}

	snap, err := p.snapshots.Fresh(ctx)
	if err != nil {
		// A broken store read is a miss, not a dashboard failure
		p.logger.Warn("snapshot store read failed", "error", err)
	}
	if snap != nil {
		p.memo.Set(key, snap)
		return compose(snap, months, false), nil
	}

	snap, err = p.recompute(ctx)
	if err != nil {
		p.logger.Error("analytics recompute failed", "error", err)

		stale, serr := p.snapshots.Stale(ctx)
		if serr == nil && stale != nil {
			p.logger.Info("serving stale snapshot", "computed_at", stale.ComputedAt)
			return compose(stale, months, true), nil
		}
		return nil, err
	}

	p.writeBack(ctx, key, snap)
	return compose(snap, months, false), nil
}

// Refresh clears both cache tiers and forces a recomputation. With the tiers
// already cleared there is no stale fallback: a failed recompute propagates.
func (p *Policy) Refresh(ctx context.Context, in DashboardInput) (*DashboardOutput, error) {
	refreshID := uuid.New().String()
	p.logger.Info("dashboard refresh requested", "refresh_id", refreshID)

	rng, months := p.normalizeRange(in.Range)

	p.memo.Purge()
	if err := p.snapshots.Clear(ctx); err != nil {
		p.logger.Warn("clearing snapshot tier failed", "refresh_id", refreshID, "error", err)
	}

	snap, err := p.recompute(ctx)
	if err != nil {
		return nil, err
	}

	p.writeBack(ctx, cache.Signature(DashboardInput{Range: rng}), snap)
	p.logger.Info("dashboard refresh complete", "refresh_id", refreshID, "computed_at", snap.ComputedAt)
	return compose(snap, months, false), nil
}

// WarmSnapshot recomputes the snapshot and replaces both tiers. Used by the
// background refresher to keep interactive requests on the cache path.
func (p *Policy) WarmSnapshot(ctx context.Context) error {
	snap, err := p.recompute(ctx)
	if err != nil {
		return err
	}
	if err := p.snapshots.Put(ctx, snap); err != nil {
		return fmt.Errorf("persisting warmed snapshot: %w", err)
	}
	p.memo.Purge()
	return nil
}

// ResolveAuthorName resolves an author ID on demand, outside the batch path
func (p *Policy) ResolveAuthorName(ctx context.Context, id string) string {
	return p.svc.ResolveAuthorName(ctx, id)
}

// recompute runs the full aggregation under the configured deadline
func (p *Policy) recompute(ctx context.Context) (*entity.Snapshot, error) {
	cctx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	snap, err := p.svc.BuildSnapshot(cctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", entity.ErrComputeDeadlineExceeded, err)
		}
		return nil, err
	}
	return snap, nil
}

// writeBack stores a fresh snapshot in both tiers. A failed durable write is
// logged but never fails the request that produced the data.
func (p *Policy) writeBack(ctx context.Context, key string, snap *entity.Snapshot) {
	if err := p.snapshots.Put(ctx, snap); err != nil {
		p.logger.Warn("persisting snapshot failed", "error", err)
	}
	p.memo.Set(key, snap)
}

// normalizeRange validates the requested range, silently falling back to the
// configured default, and returns it with its month span (0 = unbounded).
func (p *Policy) normalizeRange(rng string) (string, int) {
	months, ok := rangeMonths(rng)
	if !ok {
		if m, ok := rangeMonths(p.defaultRange); ok {
			return p.defaultRange, m
		}
		return "all", 0
	}
	return rng, months
}

func rangeMonths(rng string) (int, bool) {
	switch rng {
	case "all":
		return 0, true
	case "past-year":
		return 12, true
	case "past-6-months":
		return 6, true
	default:
		return 0, false
	}
}

// compose builds the response for one request from the full snapshot: series
// clipped to the visible window, with series that have no activity in the
// window dropped from the legend.
func compose(snap *entity.Snapshot, months int, stale bool) *DashboardOutput {
	return &DashboardOutput{
		Stats: snap.Stats,
		Charts: entity.ChartSeries{
			Monthly:        timeseries.ClipToRecent(snap.Charts.Monthly, months),
			PerContentType: clipSeries(snap.Charts.PerContentType, months),
			PerAuthor:      clipSeries(snap.Charts.PerAuthor, months),
		},
		ScheduledEntries:  snap.ScheduledEntries,
		RecentlyPublished: snap.RecentlyPublished,
		StaleEntries:      snap.StaleEntries,
		AuthorNames:       snap.AuthorNames,
		ComputedAt:        snap.ComputedAt,
		Stale:             stale,
	}
}

func clipSeries(series []entity.Series, months int) []entity.Series {
	out := make([]entity.Series, 0, len(series))
	for _, s := range series {
		buckets := timeseries.ClipToRecent(s.Buckets, months)
		if !timeseries.HasNonZero(buckets) {
			continue
		}
		out = append(out, entity.Series{Name: s.Name, Buckets: buckets})
	}
	return out
}
