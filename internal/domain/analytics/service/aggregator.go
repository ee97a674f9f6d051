package service

import (
	"context"
	"time"

	"github.com/vadim/contentpulse/internal/domain/analytics/dao"
	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
	"github.com/vadim/contentpulse/internal/domain/analytics/timeseries"
)

// computeStats derives the summary metrics from a single streaming scan of
// the published corpus plus one windowed scan for time-to-publish. Counters
// accumulate page by page; the corpus is never materialized in full.
// ScheduledCount is left at zero; the caller fills it from the reconciler.
func (s *Service) computeStats(ctx context.Context, now time.Time) (*entity.Stats, error) {
	currMonth := timeseries.MonthKey(now)
	prevMonth := timeseries.MonthKey(now.AddDate(0, -1, 0))
	recentFrom := now.AddDate(0, 0, -s.cfg.RecentlyPublishedDays)
	staleBefore := now.AddDate(0, -s.cfg.NeedsUpdateMonths, 0)

	var (
		total          int
		currMonthFirst int
		prevMonthFirst int
		recent         int
		needsUpdate    int
	)

	err := s.scanEntries(ctx, dao.EntryFilter{OnlyPublished: true, Order: "created_at"}, func(e entity.Entry) {
		total++
		if e.FirstPublishedAt != nil {
			switch timeseries.MonthKey(*e.FirstPublishedAt) {
			case currMonth:
				currMonthFirst++
			case prevMonth:
				prevMonthFirst++
			}
		}
		if e.PublishedAt != nil && !e.PublishedAt.Before(recentFrom) {
			recent++
		}
		if !e.UpdatedAt.After(staleBefore) {
			needsUpdate++
		}
	})
	if err != nil {
		return nil, err
	}

	avgDays, err := s.averageTimeToPublish(ctx, now)
	if err != nil {
		return nil, err
	}

	return &entity.Stats{
		TotalPublished:         total,
		PercentChange:          timeseries.PercentChange(prevMonthFirst, currMonthFirst),
		RecentlyPublishedCount: recent,
		NeedsUpdateCount:       needsUpdate,
		PreviousMonthPublished: prevMonthFirst,
		AvgTimeToPublishDays:   avgDays,
	}, nil
}

// averageTimeToPublish computes the mean created-to-published gap in days
// over entries created within the trailing window. Entries never published
// are excluded; an empty window yields 0.
func (s *Service) averageTimeToPublish(ctx context.Context, now time.Time) (float64, error) {
	from := now.AddDate(0, 0, -s.cfg.TimeToPublishDays)

	var (
		sum   float64
		count int
	)

	err := s.scanEntries(ctx, dao.EntryFilter{CreatedFrom: &from, Order: "created_at"}, func(e entity.Entry) {
		if e.PublishedAt == nil {
			return
		}
		sum += e.PublishedAt.Sub(e.CreatedAt).Hours() / 24
		count++
	})
	if err != nil {
		return 0, err
	}

	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}
