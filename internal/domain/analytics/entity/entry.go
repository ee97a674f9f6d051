package entity

import (
	"time"
)

// Entry represents one unit of managed content in the remote repository.
// The analytics engine only ever reads entries; all mutation happens upstream.
type Entry struct {
	ID               string     `json:"id"`
	ContentTypeID    string     `json:"content_type_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	FirstPublishedAt *time.Time `json:"first_published_at,omitempty"` // Nil if never published
	PublishedAt      *time.Time `json:"published_at,omitempty"`       // Nil if currently a draft
	CreatedByID      string     `json:"created_by_id,omitempty"`
	UpdatedByID      string     `json:"updated_by_id,omitempty"`
	PublishedByID    string     `json:"published_by_id,omitempty"`
}

// IsPublished returns true if the entry currently has a published version
func (e *Entry) IsPublished() bool {
	return e.PublishedAt != nil
}

// LastActivityAt returns the later of the entry's publish and update times.
// Used for the "updated content" chart view.
func (e *Entry) LastActivityAt() time.Time {
	if e.PublishedAt != nil && e.PublishedAt.After(e.UpdatedAt) {
		return *e.PublishedAt
	}
	return e.UpdatedAt
}

// LastActorID returns the author to attribute the entry's latest activity to:
// the publisher if the last publish came after the last update, otherwise the
// last updater.
func (e *Entry) LastActorID() string {
	if e.PublishedAt != nil && e.PublishedAt.After(e.UpdatedAt) && e.PublishedByID != "" {
		return e.PublishedByID
	}
	return e.UpdatedByID
}

// User represents an author or editor from the space directory
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// DisplayName returns the human-readable name for the user: first and last
// name when both are present, else the email, else the raw ID.
func (u *User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}
