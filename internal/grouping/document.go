package grouping

import (
	"context"
	"strings"
	"time"
)

// Document is the engine's read view of one stored news item. Entities and
// Tags are upstream annotations and are consumed read-only here.
type Document struct {
	ID          int64
	Title       string
	Summary     string
	Link        string
	PublishedAt *time.Time
	Entities    []string
	Tags        []string
	GroupID     *int64
}

// ComposedText joins title and optional summary for similarity scoring.
func (d Document) ComposedText() string {
	title := strings.TrimSpace(d.Title)
	summary := strings.TrimSpace(d.Summary)
	if summary == "" {
		return title
	}
	if title == "" {
		return summary
	}
	return title + " " + summary
}

// GroupMeta is the per-group materialized aggregate. It is keyed by the seed
// document's id; there is no separate group identity space.
type GroupMeta struct {
	GroupID       int64
	FirstSeenAt   time.Time
	LastUpdatedAt time.Time
	MemberCount   int
}

// Store is the persistence surface the engine and runners need. *db.Pool
// implements it against Postgres; tests use an in-memory implementation.
type Store interface {
	// LinkExists reports whether another document (excluding excludeID)
	// already carries the identical link.
	LinkExists(ctx context.Context, link string, excludeID int64) (bool, error)

	// RecentDocuments returns documents with a publish time at or after
	// cutoff, most recent first.
	RecentDocuments(ctx context.Context, cutoff time.Time) ([]Document, error)

	// DocumentsPublishedAfter returns documents published strictly after
	// since, ascending by publish time.
	DocumentsPublishedAfter(ctx context.Context, since time.Time) ([]Document, error)

	// DocumentsPublishedBetween returns documents published in [from, to],
	// ascending by publish time.
	DocumentsPublishedBetween(ctx context.Context, from, to time.Time) ([]Document, error)

	// AssignGroup persists the document's group reference immediately.
	AssignGroup(ctx context.Context, documentID, groupID int64) error

	GetGroupMeta(ctx context.Context, groupID int64) (*GroupMeta, error)
	CreateGroupMeta(ctx context.Context, meta GroupMeta) error

	// TouchGroupMeta records one join: bumps member_count and advances
	// last_updated_at.
	TouchGroupMeta(ctx context.Context, groupID int64, lastUpdatedAt time.Time) error
}
