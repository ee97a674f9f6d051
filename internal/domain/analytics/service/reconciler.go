package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

// ScheduledEntryIDs reconciles all pending scheduled actions into the set of
// entry IDs that are effectively scheduled for a future publish. Actions
// targeting a release expand to the release's members; duplicates across
// actions collapse via set semantics. A release that fails to resolve is
// skipped with a warning and never aborts the reconciliation.
func (s *Service) ScheduledEntryIDs(ctx context.Context, now time.Time) (map[string]struct{}, error) {
	actions, err := s.schedule.FetchScheduledActions(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{})
	var releaseIDs []string
	for _, a := range actions {
		if !a.QualifiesAt(now) {
			continue
		}
		switch a.TargetKind {
		case entity.TargetKindEntry:
			ids[a.TargetID] = struct{}{}
		case entity.TargetKindRelease:
			releaseIDs = append(releaseIDs, a.TargetID)
		}
	}

	if len(releaseIDs) == 0 {
		return ids, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, releaseID := range releaseIDs {
		releaseID := releaseID
		g.Go(func() error {
			release, err := s.schedule.FetchRelease(gctx, releaseID)
			if err != nil {
				s.logger.Warn("skipping unresolvable release", "release_id", releaseID, "error", err)
				return nil
			}
			mu.Lock()
			for _, id := range release.EntryIDs {
				ids[id] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ids, nil
}
