package entity

import "errors"

// Domain errors for analytics
var (
	// Aggregation errors
	ErrComputeDeadlineExceeded = errors.New("analytics computation exceeded its deadline")
	ErrNoSnapshot              = errors.New("no analytics snapshot available")

	// Repository errors
	ErrRepositoryUnavailable = errors.New("content repository request failed")
	ErrRateLimited           = errors.New("content repository rate limit exceeded")
	ErrReleaseNotFound       = errors.New("release not found")
	ErrUserNotFound          = errors.New("user not found")

	// Validation errors
	ErrInvalidTimeRange = errors.New("invalid chart time range")
)
