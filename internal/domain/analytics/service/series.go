package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vadim/contentpulse/internal/domain/analytics/dao"
	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
	"github.com/vadim/contentpulse/internal/domain/analytics/timeseries"
)

const resolveConcurrency = 8

// buildCharts derives the monthly, per-content-type and per-author chart
// series from one streaming scan of the published corpus. Content-type series
// use the new-content view (first publish); author series use the
// updated-content view (latest publish or update, attributed to the publisher
// when the publish is newer). Series with no activity at all are dropped.
// Returns the series plus the resolved author-name map.
func (s *Service) buildCharts(ctx context.Context, now time.Time) (*entity.ChartSeries, map[string]string, error) {
	tracked := toSet(s.cfg.TrackedContentTypes)
	excluded := toSet(s.cfg.ExcludedContentTypes)

	var (
		allFirst   []time.Time
		perType    = make(map[string][]time.Time)
		perActorID = make(map[string][]time.Time)
	)

	err := s.scanEntries(ctx, dao.EntryFilter{OnlyPublished: true, Order: "created_at"}, func(e entity.Entry) {
		if e.FirstPublishedAt != nil {
			allFirst = append(allFirst, *e.FirstPublishedAt)

			if typeVisible(e.ContentTypeID, tracked, excluded) {
				perType[e.ContentTypeID] = append(perType[e.ContentTypeID], *e.FirstPublishedAt)
			}
		}

		if actor := e.LastActorID(); actor != "" {
			perActorID[actor] = append(perActorID[actor], e.LastActivityAt())
		}
	})
	if err != nil {
		return nil, nil, err
	}

	authorNames, err := s.resolveActors(ctx, perActorID)
	if err != nil {
		return nil, nil, err
	}

	// Distinct IDs resolving to the same display name merge into one series
	perAuthor := make(map[string][]time.Time, len(perActorID))
	for id, times := range perActorID {
		name := authorNames[id]
		perAuthor[name] = append(perAuthor[name], times...)
	}

	charts := &entity.ChartSeries{
		Monthly:        timeseries.BucketByMonth(allFirst, now),
		PerContentType: bucketGrouped(perType, now),
		PerAuthor:      bucketGrouped(perAuthor, now),
	}
	return charts, authorNames, nil
}

// resolveActors resolves every distinct actor ID through the directory,
// fanning lookups out with bounded concurrency. The resolver coalesces
// duplicate in-flight IDs and never fails, so this cannot abort the batch.
func (s *Service) resolveActors(ctx context.Context, perActorID map[string][]time.Time) (map[string]string, error) {
	var mu sync.Mutex
	names := make(map[string]string, len(perActorID))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for id := range perActorID {
		id := id
		g.Go(func() error {
			name := s.resolver.ResolveName(gctx, id)
			mu.Lock()
			names[id] = name
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return names, nil
}

// bucketGrouped builds one month-bucket series per group, sorted by name.
// Groups that never produced a non-zero month are dropped.
func bucketGrouped(groups map[string][]time.Time, now time.Time) []entity.Series {
	out := make([]entity.Series, 0, len(groups))
	for name, times := range groups {
		buckets := timeseries.BucketByMonth(times, now)
		if !timeseries.HasNonZero(buckets) {
			continue
		}
		out = append(out, entity.Series{Name: name, Buckets: buckets})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func typeVisible(contentTypeID string, tracked, excluded map[string]struct{}) bool {
	if _, ok := excluded[contentTypeID]; ok {
		return false
	}
	if len(tracked) > 0 {
		_, ok := tracked[contentTypeID]
		return ok
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
