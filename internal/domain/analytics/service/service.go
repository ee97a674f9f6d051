package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vadim/contentpulse/internal/domain/analytics/dao"
	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

// Config holds the aggregation windows and scan parameters
type Config struct {
	RecentlyPublishedDays int
	NeedsUpdateMonths     int
	TimeToPublishDays     int
	TrackedContentTypes   []string
	ExcludedContentTypes  []string
	ScanPageSize          int
	BatchPageSize         int
}

// Service computes dashboard analytics from the remote content repository
type Service struct {
	entries  dao.EntrySource
	schedule dao.ScheduleSource
	resolver *Resolver
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a new analytics service
func New(entries dao.EntrySource, schedule dao.ScheduleSource, resolver *Resolver, cfg Config, logger *slog.Logger) *Service {
	if cfg.ScanPageSize <= 0 {
		cfg.ScanPageSize = 1000
	}
	if cfg.BatchPageSize <= 0 || cfg.BatchPageSize > 100 {
		cfg.BatchPageSize = 100
	}
	return &Service{
		entries:  entries,
		schedule: schedule,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildSnapshot runs the full aggregation: stats, chart series and the
// scheduled / recently published / stale entry lists, with independent
// sub-computations fanned out in parallel. Partial-resolution failures
// (a single release or user) are skipped; any other failure aborts the batch.
func (s *Service) BuildSnapshot(ctx context.Context) (*entity.Snapshot, error) {
	now := s.now()

	var (
		stats          *entity.Stats
		charts         *entity.ChartSeries
		authors        map[string]string
		scheduledCount int
		scheduled      []entity.Entry
		recent         []entity.Entry
		stale          []entity.Entry
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stats, err = s.computeStats(gctx, now)
		return err
	})

	g.Go(func() error {
		var err error
		charts, authors, err = s.buildCharts(gctx, now)
		return err
	})

	g.Go(func() error {
		ids, err := s.ScheduledEntryIDs(gctx, now)
		if err != nil {
			return err
		}
		// The metric is the size of the reconciled id set. Hydration below
		// may come back shorter when an id no longer resolves to an entry.
		scheduledCount = len(ids)
		scheduled, err = s.fetchEntriesByID(gctx, ids)
		return err
	})

	g.Go(func() error {
		var err error
		recent, err = s.recentlyPublishedEntries(gctx, now)
		return err
	})

	g.Go(func() error {
		var err error
		stale, err = s.staleEntries(gctx, now)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The scheduled count belongs to stats but derives from the reconciled
	// set, which is computed on its own branch.
	stats.ScheduledCount = scheduledCount

	return &entity.Snapshot{
		Stats:             *stats,
		Charts:            *charts,
		ScheduledEntries:  scheduled,
		RecentlyPublished: recent,
		StaleEntries:      stale,
		AuthorNames:       authors,
		ComputedAt:        now,
	}, nil
}

// ResolveAuthorName resolves a single author ID outside the batch path
func (s *Service) ResolveAuthorName(ctx context.Context, id string) string {
	return s.resolver.ResolveName(ctx, id)
}

// scanEntries walks every page matching the filter, invoking fn per entry.
// Pages are accumulated one at a time so an unbounded corpus never has to fit
// in memory. The loop ends on an absent cursor or a short page; a full page
// alone never continues the scan.
func (s *Service) scanEntries(ctx context.Context, filter dao.EntryFilter, fn func(entity.Entry)) error {
	if filter.Limit <= 0 {
		filter.Limit = s.cfg.ScanPageSize
	}

	cursor := ""
	for {
		page, err := s.entries.FetchEntries(ctx, filter, cursor)
		if err != nil {
			return err
		}
		for _, e := range page.Entries {
			fn(e)
		}
		if page.NextCursor == "" || len(page.Entries) < filter.Limit {
			return nil
		}
		cursor = page.NextCursor
	}
}

// collectEntries gathers every entry matching the filter into a slice
func (s *Service) collectEntries(ctx context.Context, filter dao.EntryFilter) ([]entity.Entry, error) {
	var out []entity.Entry
	err := s.scanEntries(ctx, filter, func(e entity.Entry) {
		out = append(out, e)
	})
	return out, err
}

// fetchEntriesByID hydrates a set of entry IDs into full entries, in batches
// bounded by the repository's id-filter cap, fetched in parallel. Output is
// sorted by ID so repeated runs over an unchanged corpus are identical.
func (s *Service) fetchEntriesByID(ctx context.Context, ids map[string]struct{}) ([]entity.Entry, error) {
	if len(ids) == 0 {
		return []entity.Entry{}, nil
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	var (
		mu  sync.Mutex
		out []entity.Entry
	)

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(sorted); start += s.cfg.BatchPageSize {
		end := start + s.cfg.BatchPageSize
		if end > len(sorted) {
			end = len(sorted)
		}
		batch := sorted[start:end]

		g.Go(func() error {
			entries, err := s.collectEntries(gctx, dao.EntryFilter{
				IDs:   batch,
				Limit: s.cfg.BatchPageSize,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			out = append(out, entries...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// recentlyPublishedEntries fetches entries published within the recent window
func (s *Service) recentlyPublishedEntries(ctx context.Context, now time.Time) ([]entity.Entry, error) {
	from := now.AddDate(0, 0, -s.cfg.RecentlyPublishedDays)
	return s.collectEntries(ctx, dao.EntryFilter{
		OnlyPublished: true,
		PublishedFrom: &from,
		Order:         "-published_at",
	})
}

// staleEntries fetches published entries not updated within the stale window
func (s *Service) staleEntries(ctx context.Context, now time.Time) ([]entity.Entry, error) {
	before := now.AddDate(0, -s.cfg.NeedsUpdateMonths, 0)
	return s.collectEntries(ctx, dao.EntryFilter{
		OnlyPublished: true,
		UpdatedBefore: &before,
		Order:         "updated_at",
	})
}
