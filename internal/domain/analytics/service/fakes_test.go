package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vadim/contentpulse/internal/domain/analytics/dao"
	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

// fakeRepo is an in-memory stand-in for the remote content repository. It
// honors the same filter and cursor semantics as the real client: skip-based
// cursors, pages capped at the filter limit, and an empty cursor on the last
// page.
type fakeRepo struct {
	mu sync.Mutex

	entries  []entity.Entry
	actions  []entity.ScheduledAction
	releases map[string]*entity.Release
	users    map[string]entity.User

	failReleases map[string]bool

	entryCalls int
	userCalls  map[string]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		releases:     make(map[string]*entity.Release),
		users:        make(map[string]entity.User),
		failReleases: make(map[string]bool),
		userCalls:    make(map[string]int),
	}
}

func (f *fakeRepo) FetchEntries(_ context.Context, filter dao.EntryFilter, cursor string) (*dao.EntryPage, error) {
	f.mu.Lock()
	f.entryCalls++
	f.mu.Unlock()

	var matched []entity.Entry
	for _, e := range f.entries {
		if matchesFilter(e, filter) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	skip := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("bad cursor %q", cursor)
		}
		skip = n
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	if skip > len(matched) {
		skip = len(matched)
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}

	next := ""
	if end < len(matched) {
		next = strconv.Itoa(end)
	}
	return &dao.EntryPage{Entries: matched[skip:end], NextCursor: next}, nil
}

func matchesFilter(e entity.Entry, filter dao.EntryFilter) bool {
	if filter.OnlyPublished && e.PublishedAt == nil {
		return false
	}
	if filter.ContentTypeID != "" && e.ContentTypeID != filter.ContentTypeID {
		return false
	}
	if filter.PublishedFrom != nil {
		if e.PublishedAt == nil || e.PublishedAt.Before(*filter.PublishedFrom) {
			return false
		}
	}
	if filter.UpdatedBefore != nil && e.UpdatedAt.After(*filter.UpdatedBefore) {
		return false
	}
	if filter.CreatedFrom != nil && e.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if len(filter.IDs) > 0 {
		found := false
		for _, id := range filter.IDs {
			if id == e.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f *fakeRepo) FetchScheduledActions(_ context.Context) ([]entity.ScheduledAction, error) {
	return f.actions, nil
}

func (f *fakeRepo) FetchRelease(_ context.Context, id string) (*entity.Release, error) {
	if f.failReleases[id] {
		return nil, entity.ErrReleaseNotFound
	}
	release, ok := f.releases[id]
	if !ok {
		return nil, entity.ErrReleaseNotFound
	}
	return release, nil
}

func (f *fakeRepo) GetUser(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	f.userCalls[id]++
	f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return &user, nil
}

func (f *fakeRepo) ListUsers(_ context.Context) ([]entity.User, error) {
	out := make([]entity.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) entryCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entryCalls
}

func (f *fakeRepo) userCallCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userCalls[id]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo *fakeRepo, cfg Config, now time.Time) *Service {
	resolver := NewResolver(repo, time.Minute, testLogger())
	svc := New(repo, repo, resolver, cfg, testLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func ts(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func tsp(y int, m time.Month, d int) *time.Time {
	t := ts(y, m, d)
	return &t
}
