package entity

import (
	"time"
)

// ActionStatus represents the lifecycle status of a scheduled action
type ActionStatus string

const (
	ActionStatusScheduled ActionStatus = "scheduled"
	ActionStatusCanceled  ActionStatus = "canceled"
	ActionStatusCompleted ActionStatus = "completed"
)

// ActionKind represents what a scheduled action will do to its target
type ActionKind string

const (
	ActionKindPublish   ActionKind = "publish"
	ActionKindUnpublish ActionKind = "unpublish"
)

// TargetKind represents the type of record a scheduled action is aimed at
type TargetKind string

const (
	TargetKindEntry   TargetKind = "entry"
	TargetKindRelease TargetKind = "release"
)

// ScheduledAction represents a pending or past scheduling action in the
// repository, targeting either a single entry or a whole release.
type ScheduledAction struct {
	ID           string       `json:"id"`
	Status       ActionStatus `json:"status"`
	Action       ActionKind   `json:"action"`
	ScheduledFor time.Time    `json:"scheduled_for"`
	Timezone     string       `json:"timezone,omitempty"`
	TargetKind   TargetKind   `json:"target_kind"`
	TargetID     string       `json:"target_id"`
}

// QualifiesAt returns true if the action contributes to the effectively
// scheduled set at the given instant: an active publish aimed at the future.
func (a *ScheduledAction) QualifiesAt(now time.Time) bool {
	return a.Status == ActionStatusScheduled &&
		a.Action == ActionKindPublish &&
		a.ScheduledFor.After(now)
}

// Release represents a named bundle of entries scheduled to change state
// together through a single scheduled action.
type Release struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	EntryIDs    []string  `json:"entry_ids"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedByID string    `json:"updated_by_id,omitempty"`
}
