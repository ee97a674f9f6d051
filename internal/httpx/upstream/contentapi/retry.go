package contentapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vadim/contentpulse/internal/domain/analytics/dao"
	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

// Retrying wraps a Client with transient-error retry. Rate limits, timeouts
// and 5xx responses are retried with exponential backoff up to maxAttempts;
// permanent API errors surface immediately. The wrapped client stays
// retry-free so this policy lives entirely with the caller.
type Retrying struct {
	client      *Client
	maxAttempts uint64
	interval    time.Duration
}

// NewRetrying creates a retrying wrapper around a content repository client
func NewRetrying(client *Client, maxAttempts int, interval time.Duration) *Retrying {
	if maxAttempts < 0 {
		maxAttempts = 0
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Retrying{
		client:      client,
		maxAttempts: uint64(maxAttempts),
		interval:    interval,
	}
}

// retry runs fn with exponential backoff, short-circuiting permanent errors.
// Failures that survive the retry budget come back wrapped in the domain
// sentinels so callers can map them without knowing the transport.
func (r *Retrying) retry(ctx context.Context, fn func() error) error {
	op := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, entity.ErrReleaseNotFound) || errors.Is(err, entity.ErrUserNotFound) {
			return backoff.Permanent(err)
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsPermanent() {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.interval

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, r.maxAttempts), ctx))
	if err == nil {
		return nil
	}
	// Pass not-found sentinels and context errors through untouched: callers
	// match on them directly.
	if errors.Is(err, entity.ErrReleaseNotFound) || errors.Is(err, entity.ErrUserNotFound) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsRateLimited() {
		return fmt.Errorf("%w: %w", entity.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %w", entity.ErrRepositoryUnavailable, err)
}

// FetchEntries retrieves one page of entries, retrying transient failures
func (r *Retrying) FetchEntries(ctx context.Context, filter dao.EntryFilter, cursor string) (*dao.EntryPage, error) {
	var page *dao.EntryPage
	err := r.retry(ctx, func() error {
		var err error
		page, err = r.client.FetchEntries(ctx, filter, cursor)
		return err
	})
	return page, err
}

// FetchScheduledActions retrieves all pending scheduled actions, retrying
// transient failures
func (r *Retrying) FetchScheduledActions(ctx context.Context) ([]entity.ScheduledAction, error) {
	var actions []entity.ScheduledAction
	err := r.retry(ctx, func() error {
		var err error
		actions, err = r.client.FetchScheduledActions(ctx)
		return err
	})
	return actions, err
}

// FetchRelease retrieves a release by ID, retrying transient failures
func (r *Retrying) FetchRelease(ctx context.Context, id string) (*entity.Release, error) {
	var release *entity.Release
	err := r.retry(ctx, func() error {
		var err error
		release, err = r.client.FetchRelease(ctx, id)
		return err
	})
	return release, err
}

// GetUser retrieves a single user, retrying transient failures
func (r *Retrying) GetUser(ctx context.Context, id string) (*entity.User, error) {
	var user *entity.User
	err := r.retry(ctx, func() error {
		var err error
		user, err = r.client.GetUser(ctx, id)
		return err
	})
	return user, err
}

// ListUsers retrieves all users in the space, retrying transient failures
func (r *Retrying) ListUsers(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.retry(ctx, func() error {
		var err error
		users, err = r.client.ListUsers(ctx)
		return err
	})
	return users, err
}
