package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/vadim/contentpulse/internal/domain/analytics/dao"
)

const resolverCacheSize = 1024

// Resolver resolves opaque author IDs into display names through the space
// directory. Results are memoized for a TTL; concurrent lookups for the same
// ID are coalesced into one directory call. A failed lookup resolves to the
// raw ID and is cached like a success, so a missing user never aborts an
// aggregation pass and is not retried for the remainder of the TTL window.
type Resolver struct {
	directory dao.DirectorySource
	cache     *expirable.LRU[string, string]
	group     singleflight.Group
	logger    *slog.Logger
}

// NewResolver creates a new directory resolver with a TTL-bounded name cache
func NewResolver(directory dao.DirectorySource, ttl time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		directory: directory,
		cache:     expirable.NewLRU[string, string](resolverCacheSize, nil, ttl),
		logger:    logger,
	}
}

// ResolveName resolves an author ID to a display name. Never fails: unknown
// or unresolvable IDs come back as the raw ID.
func (r *Resolver) ResolveName(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}

	if name, ok := r.cache.Get(id); ok {
		return name
	}

	v, _, _ := r.group.Do(id, func() (interface{}, error) {
		name := id
		user, err := r.directory.GetUser(ctx, id)
		if err != nil {
			r.logger.Warn("directory lookup failed, falling back to raw id", "user_id", id, "error", err)
		} else {
			name = user.DisplayName()
		}
		r.cache.Add(id, name)
		return name, nil
	})

	return v.(string)
}
