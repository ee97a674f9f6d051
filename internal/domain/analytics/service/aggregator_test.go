package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/contentpulse/internal/domain/analytics/dao"
	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

func publishedEntry(id string, firstPub time.Time) entity.Entry {
	created := firstPub.AddDate(0, 0, -2)
	return entity.Entry{
		ID:               id,
		ContentTypeID:    "article",
		CreatedAt:        created,
		UpdatedAt:        firstPub,
		FirstPublishedAt: &firstPub,
		PublishedAt:      &firstPub,
		CreatedByID:      "u1",
		UpdatedByID:      "u1",
		PublishedByID:    "u1",
	}
}

// One entry per month for a year, plus a second entry in the current month
// published yesterday. The current month doubles the previous one and only
// the yesterday publish falls in the 7-day window.
func yearOfEntries(now time.Time) []entity.Entry {
	entries := []entity.Entry{
		publishedEntry("e01", ts(2025, time.September, 15)),
		publishedEntry("e02", ts(2025, time.October, 15)),
		publishedEntry("e03", ts(2025, time.November, 15)),
		publishedEntry("e04", ts(2025, time.December, 15)),
		publishedEntry("e05", ts(2026, time.January, 15)),
		publishedEntry("e06", ts(2026, time.February, 15)),
		publishedEntry("e07", ts(2026, time.March, 15)),
		publishedEntry("e08", ts(2026, time.April, 15)),
		publishedEntry("e09", ts(2026, time.May, 15)),
		publishedEntry("e10", ts(2026, time.June, 15)),
		publishedEntry("e11", ts(2026, time.July, 15)),
		publishedEntry("e12", ts(2026, time.August, 2)),
		publishedEntry("e13", now.AddDate(0, 0, -1)),
	}
	return entries
}

func statsConfig() Config {
	return Config{
		RecentlyPublishedDays: 7,
		NeedsUpdateMonths:     6,
		TimeToPublishDays:     30,
	}
}

func TestComputeStats_FullYear(t *testing.T) {
	now := ts(2026, time.August, 15)
	repo := newFakeRepo()
	repo.entries = yearOfEntries(now)

	svc := newTestService(repo, statsConfig(), now)

	stats, err := svc.computeStats(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 13, stats.TotalPublished)
	// August has 2 first-publishes against July's 1
	assert.Equal(t, float64(100), stats.PercentChange)
	assert.Equal(t, 1, stats.PreviousMonthPublished)
	// Only yesterday's publish falls within the 7-day window
	assert.Equal(t, 1, stats.RecentlyPublishedCount)
	// September 2025 through February 2026 have not been touched in 6 months
	assert.Equal(t, 6, stats.NeedsUpdateCount)
	// Both entries created in the trailing 30 days took 2 days to publish
	assert.InDelta(t, 2.0, stats.AvgTimeToPublishDays, 0.01)
}

func TestComputeStats_DraftsExcluded(t *testing.T) {
	now := ts(2026, time.August, 15)
	repo := newFakeRepo()
	repo.entries = []entity.Entry{
		publishedEntry("e1", ts(2026, time.August, 2)),
		{
			ID:            "draft-1",
			ContentTypeID: "article",
			CreatedAt:     ts(2026, time.August, 1),
			UpdatedAt:     ts(2026, time.August, 10),
		},
	}

	svc := newTestService(repo, statsConfig(), now)

	stats, err := svc.computeStats(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPublished)
}

func TestComputeStats_EmptyCorpus(t *testing.T) {
	now := ts(2026, time.August, 15)
	svc := newTestService(newFakeRepo(), statsConfig(), now)

	stats, err := svc.computeStats(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalPublished)
	assert.Equal(t, float64(0), stats.PercentChange)
	assert.Equal(t, float64(0), stats.AvgTimeToPublishDays)
}

func TestScanEntries_WalksAllPages(t *testing.T) {
	now := ts(2026, time.August, 15)
	repo := newFakeRepo()
	repo.entries = yearOfEntries(now)

	cfg := statsConfig()
	cfg.ScanPageSize = 5
	svc := newTestService(repo, cfg, now)

	entries, err := svc.collectEntries(context.Background(), dao.EntryFilter{OnlyPublished: true})
	require.NoError(t, err)

	assert.Len(t, entries, 13)
	// 13 entries at page size 5 is three pages
	assert.Equal(t, 3, repo.entryCallCount())
}

func TestFetchEntriesByID_SortedAndBatched(t *testing.T) {
	now := ts(2026, time.August, 15)
	repo := newFakeRepo()
	repo.entries = yearOfEntries(now)

	cfg := statsConfig()
	cfg.BatchPageSize = 4
	svc := newTestService(repo, cfg, now)

	ids := map[string]struct{}{
		"e05": {}, "e01": {}, "e13": {}, "e09": {}, "e03": {},
	}
	entries, err := svc.fetchEntriesByID(context.Background(), ids)
	require.NoError(t, err)

	require.Len(t, entries, 5)
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.ID
	}
	assert.Equal(t, []string{"e01", "e03", "e05", "e09", "e13"}, got)
}

func TestFetchEntriesByID_MissingIDsDropped(t *testing.T) {
	now := ts(2026, time.August, 15)
	repo := newFakeRepo()
	repo.entries = []entity.Entry{publishedEntry("e1", ts(2026, time.August, 2))}

	svc := newTestService(repo, statsConfig(), now)

	entries, err := svc.fetchEntriesByID(context.Background(), map[string]struct{}{
		"e1": {}, "deleted-entry": {},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)
}
