package dao

import (
	"context"
	"time"

	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

// EntryFilter contains filters for querying entries from the repository
type EntryFilter struct {
	ContentTypeID string
	IDs           []string // Id-in-list filter; capped at the repository's batch page size
	OnlyPublished bool
	PublishedFrom *time.Time // published_at >= PublishedFrom
	UpdatedBefore *time.Time // updated_at <= UpdatedBefore
	CreatedFrom   *time.Time // created_at >= CreatedFrom
	Order         string     // e.g. "created_at", "-published_at"
	Limit         int        // Requested page size; the source may cap it
}

// EntryPage is one page of an entry scan. NextCursor is empty when the scan
// is exhausted; callers must treat an empty cursor or a short page as the end
// of the corpus, never the page length alone.
type EntryPage struct {
	Entries    []entity.Entry
	NextCursor string
}

// EntrySource defines the read port onto the paginated content repository
type EntrySource interface {
	// FetchEntries retrieves one page of entries matching the filter,
	// starting at the given cursor (empty cursor = first page).
	FetchEntries(ctx context.Context, filter EntryFilter, cursor string) (*EntryPage, error)
}

// ScheduleSource defines the read port onto scheduling records
type ScheduleSource interface {
	// FetchScheduledActions retrieves all pending scheduled actions
	FetchScheduledActions(ctx context.Context) ([]entity.ScheduledAction, error)

	// FetchRelease retrieves a release bundle by ID
	FetchRelease(ctx context.Context, id string) (*entity.Release, error)
}

// DirectorySource defines the read port onto the space user directory
type DirectorySource interface {
	// GetUser retrieves a single user by ID
	GetUser(ctx context.Context, id string) (*entity.User, error)

	// ListUsers retrieves all users in the space
	ListUsers(ctx context.Context) ([]entity.User, error)
}

// SnapshotStore defines the durable tier of the dashboard cache. One
// dashboard per install, so implementations persist a single payload under a
// fixed key.
type SnapshotStore interface {
	// Load retrieves the persisted snapshot. A missing or unparsable
	// payload is a cache miss: (nil, nil), never an error.
	Load(ctx context.Context) (*entity.Snapshot, error)

	// Save persists the snapshot, replacing any previous one
	Save(ctx context.Context, snap *entity.Snapshot) error

	// Delete removes the persisted snapshot if present
	Delete(ctx context.Context) error
}
