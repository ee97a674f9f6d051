package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"full name", User{ID: "u1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, "Ada Lovelace"},
		{"email fallback", User{ID: "u1", FirstName: "Ada", Email: "ada@example.com"}, "ada@example.com"},
		{"id fallback", User{ID: "u1"}, "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestEntryLastActivity(t *testing.T) {
	updated := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)
	published := time.Date(2026, time.July, 20, 0, 0, 0, 0, time.UTC)

	e := Entry{
		UpdatedAt:     updated,
		PublishedAt:   &published,
		UpdatedByID:   "u-upd",
		PublishedByID: "u-pub",
	}
	assert.Equal(t, published, e.LastActivityAt())
	assert.Equal(t, "u-pub", e.LastActorID())

	// Update newer than publish flips the attribution
	e.UpdatedAt = published.Add(time.Hour)
	assert.Equal(t, e.UpdatedAt, e.LastActivityAt())
	assert.Equal(t, "u-upd", e.LastActorID())

	// Draft falls back to the updater
	draft := Entry{UpdatedAt: updated, UpdatedByID: "u-upd"}
	assert.Equal(t, updated, draft.LastActivityAt())
	assert.Equal(t, "u-upd", draft.LastActorID())
}

func TestScheduledActionQualifiesAt(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name   string
		action ScheduledAction
		want   bool
	}{
		{"future publish", ScheduledAction{Status: ActionStatusScheduled, Action: ActionKindPublish, ScheduledFor: future}, true},
		{"past publish", ScheduledAction{Status: ActionStatusScheduled, Action: ActionKindPublish, ScheduledFor: past}, false},
		{"canceled", ScheduledAction{Status: ActionStatusCanceled, Action: ActionKindPublish, ScheduledFor: future}, false},
		{"completed", ScheduledAction{Status: ActionStatusCompleted, Action: ActionKindPublish, ScheduledFor: future}, false},
		{"unpublish", ScheduledAction{Status: ActionStatusScheduled, Action: ActionKindUnpublish, ScheduledFor: future}, false},
		{"exactly now", ScheduledAction{Status: ActionStatusScheduled, Action: ActionKindPublish, ScheduledFor: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.action.QualifiesAt(now))
		})
	}
}

func TestSnapshotAge(t *testing.T) {
	computed := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{ComputedAt: computed}

	assert.Equal(t, 30*time.Minute, snap.Age(computed.Add(30*time.Minute)))
}
