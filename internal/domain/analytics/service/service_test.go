package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

func TestBuildSnapshot_FullAggregation(t *testing.T) {
	now := ts(2026, time.August, 15)
	future := now.Add(48 * time.Hour)

	repo := newFakeRepo()
	repo.entries = yearOfEntries(now)
	repo.users["u1"] = entity.User{ID: "u1", FirstName: "Vera", LastName: "Editor"}
	repo.actions = []entity.ScheduledAction{
		scheduledPublish("a1", "e01", entity.TargetKindEntry, future),
		scheduledPublish("a2", "rel-1", entity.TargetKindRelease, future),
	}
	// e01 is both individually scheduled and a release member
	repo.releases["rel-1"] = &entity.Release{ID: "rel-1", EntryIDs: []string{"e01", "e02", "e03"}}

	svc := newTestService(repo, statsConfig(), now)

	snap, err := svc.BuildSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, now, snap.ComputedAt)
	assert.Equal(t, 13, snap.Stats.TotalPublished)

	// The reconciled set backs both the count and the hydrated list
	assert.Equal(t, 3, snap.Stats.ScheduledCount)
	require.Len(t, snap.ScheduledEntries, 3)
	assert.Equal(t, "e01", snap.ScheduledEntries[0].ID)
	assert.Equal(t, "e02", snap.ScheduledEntries[1].ID)
	assert.Equal(t, "e03", snap.ScheduledEntries[2].ID)

	require.Len(t, snap.RecentlyPublished, 1)
	assert.Equal(t, "e13", snap.RecentlyPublished[0].ID)

	assert.Len(t, snap.StaleEntries, 6)

	assert.Equal(t, "Vera Editor", snap.AuthorNames["u1"])
	require.Len(t, snap.Charts.PerAuthor, 1)
	assert.Equal(t, "Vera Editor", snap.Charts.PerAuthor[0].Name)

	// Monthly series is gap-free from the earliest publish to now
	require.NotEmpty(t, snap.Charts.Monthly)
	assert.Equal(t, "2025-09", snap.Charts.Monthly[0].Month)
	assert.Equal(t, "2026-08", snap.Charts.Monthly[len(snap.Charts.Monthly)-1].Month)
}

func TestBuildSnapshot_ScheduledCountIncludesUnresolvableEntries(t *testing.T) {
	now := ts(2026, time.August, 15)
	future := now.Add(48 * time.Hour)

	repo := newFakeRepo()
	repo.entries = []entity.Entry{publishedEntry("e1", ts(2026, time.August, 2))}
	// e1 exists; entry-deleted is scheduled but no longer in the repository
	repo.actions = []entity.ScheduledAction{
		scheduledPublish("a1", "e1", entity.TargetKindEntry, future),
		scheduledPublish("a2", "entry-deleted", entity.TargetKindEntry, future),
	}

	svc := newTestService(repo, statsConfig(), now)

	snap, err := svc.BuildSnapshot(context.Background())
	require.NoError(t, err)

	// The count is the reconciled set size; the hydrated list only carries
	// entries that still resolve
	assert.Equal(t, 2, snap.Stats.ScheduledCount)
	require.Len(t, snap.ScheduledEntries, 1)
	assert.Equal(t, "e1", snap.ScheduledEntries[0].ID)
}

func TestBuildSnapshot_Deterministic(t *testing.T) {
	now := ts(2026, time.August, 15)
	repo := newFakeRepo()
	repo.entries = yearOfEntries(now)
	repo.users["u1"] = entity.User{ID: "u1", Email: "vera@example.com"}

	svc := newTestService(repo, statsConfig(), now)

	first, err := svc.BuildSnapshot(context.Background())
	require.NoError(t, err)
	second, err := svc.BuildSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildSnapshot_EmptyCorpus(t *testing.T) {
	now := ts(2026, time.August, 15)
	svc := newTestService(newFakeRepo(), statsConfig(), now)

	snap, err := svc.BuildSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, snap.Stats.TotalPublished)
	assert.Equal(t, 0, snap.Stats.ScheduledCount)
	assert.Empty(t, snap.ScheduledEntries)
	assert.Empty(t, snap.Charts.PerAuthor)
	// The overall series still carries the current month
	require.Len(t, snap.Charts.Monthly, 1)
	assert.Equal(t, "2026-08", snap.Charts.Monthly[0].Month)
}
