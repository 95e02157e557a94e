package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"horse.fit/trendwatch/internal/grouping"
)

// GetGroupMeta returns the aggregate record for one group, or nil when the
// record does not exist yet.
func (p *Pool) GetGroupMeta(ctx context.Context, groupID int64) (*grouping.GroupMeta, error) {
	const q = `
SELECT
	g.group_id,
	g.first_seen_at,
	g.last_updated_at,
	g.member_count
FROM monitor.group_meta g
WHERE g.group_id = $1
`
	var meta grouping.GroupMeta
	err := p.QueryRow(ctx, q, groupID).Scan(
		&meta.GroupID,
		&meta.FirstSeenAt,
		&meta.LastUpdatedAt,
		&meta.MemberCount,
	)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query group meta %d: %w", groupID, err)
	}
	return &meta, nil
}

func (p *Pool) CreateGroupMeta(ctx context.Context, meta grouping.GroupMeta) error {
	const q = `
INSERT INTO monitor.group_meta (
	group_id,
	first_seen_at,
	last_updated_at,
	member_count,
	created_at,
	updated_at
)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (group_id) DO NOTHING
`
	_, err := p.Exec(ctx, q,
		meta.GroupID,
		meta.FirstSeenAt.UTC(),
		meta.LastUpdatedAt.UTC(),
		meta.MemberCount,
	)
	if err != nil {
		return fmt.Errorf("insert group meta %d: %w", meta.GroupID, err)
	}
	return nil
}

// TouchGroupMeta records one join against an existing group record.
func (p *Pool) TouchGroupMeta(ctx context.Context, groupID int64, lastUpdatedAt time.Time) error {
	const q = `
UPDATE monitor.group_meta
SET last_updated_at = $2,
    member_count = member_count + 1,
    updated_at = now()
WHERE group_id = $1
`
	affected, err := p.Exec(ctx, q, groupID, lastUpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("update group meta %d: %w", groupID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update group meta %d: record not found", groupID)
	}
	return nil
}

// GroupListKind selects between freshly created and incrementally updated
// groups relative to a reference time.
type GroupListKind string

const (
	GroupListNew         GroupListKind = "new"
	GroupListIncremental GroupListKind = "incremental"
)

// GroupSummary is the read model for group listings: the aggregate plus the
// seed item as representative.
type GroupSummary struct {
	GroupID       int64      `json:"group_id"`
	FirstSeenAt   time.Time  `json:"first_seen_at"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
	MemberCount   int        `json:"member_count"`
	Title         *string    `json:"title,omitempty"`
	Link          *string    `json:"link,omitempty"`
	Summary       *string    `json:"summary,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}

// GroupMember is one item inside a group.
type GroupMember struct {
	ItemID      int64      `json:"item_id"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Summary     *string    `json:"summary,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ListGroups pages through groups relative to since: kind "new" selects
// first_seen_at >= since, kind "incremental" selects groups that existed
// before since but were updated at or after it.
func (p *Pool) ListGroups(ctx context.Context, since time.Time, kind GroupListKind, offset, limit int) ([]GroupSummary, int64, error) {
	if limit <= 0 {
		return nil, 0, fmt.Errorf("limit must be > 0")
	}
	if offset < 0 {
		offset = 0
	}

	var condition string
	switch kind {
	case GroupListNew:
		condition = "g.first_seen_at >= $1"
	case GroupListIncremental:
		condition = "g.first_seen_at < $1 AND g.last_updated_at >= $1"
	default:
		return nil, 0, fmt.Errorf("unknown group list kind %q", kind)
	}

	countQuery := `
SELECT COUNT(*)
FROM monitor.group_meta g
WHERE ` + condition

	var total int64
	if err := p.QueryRow(ctx, countQuery, since.UTC()).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count groups: %w", err)
	}

	listQuery := `
SELECT
	g.group_id,
	g.first_seen_at,
	g.last_updated_at,
	g.member_count,
	seed.title,
	seed.link,
	seed.summary,
	seed.published_at
FROM monitor.group_meta g
LEFT JOIN monitor.items seed
	ON seed.item_id = g.group_id
WHERE ` + condition + `
ORDER BY g.last_updated_at DESC, g.group_id DESC
OFFSET $2
LIMIT $3
`

	rows, err := p.Query(ctx, listQuery, since.UTC(), offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	groups := make([]GroupSummary, 0, limit)
	for rows.Next() {
		var g GroupSummary
		if err := rows.Scan(
			&g.GroupID,
			&g.FirstSeenAt,
			&g.LastUpdatedAt,
			&g.MemberCount,
			&g.Title,
			&g.Link,
			&g.Summary,
			&g.PublishedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan group summary: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, total, nil
}

// ListGroupMembers returns all items carrying groupID, earliest first.
func (p *Pool) ListGroupMembers(ctx context.Context, groupID int64) ([]GroupMember, error) {
	const q = `
SELECT
	i.item_id,
	i.title,
	i.link,
	i.summary,
	i.published_at
FROM monitor.items i
WHERE i.group_id = $1
ORDER BY i.published_at ASC NULLS LAST, i.item_id ASC
`
	rows, err := p.Query(ctx, q, groupID)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()

	var members []GroupMember
	for rows.Next() {
		var m GroupMember
		if err := rows.Scan(&m.ItemID, &m.Title, &m.Link, &m.Summary, &m.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group members: %w", err)
	}
	return members, nil
}

// RebuildGroupMeta re-derives every group aggregate from the item table.
// The aggregates are a cache over items.group_id; this is the repair path
// for metadata that drifted after swallowed sync failures. Returns the
// number of group records written.
func (p *Pool) RebuildGroupMeta(ctx context.Context, now time.Time) (int64, error) {
	const q = `
INSERT INTO monitor.group_meta (
	group_id,
	first_seen_at,
	last_updated_at,
	member_count,
	created_at,
	updated_at
)
SELECT
	i.group_id,
	MIN(COALESCE(i.published_at, i.created_at)),
	MAX(COALESCE(i.published_at, i.created_at)),
	COUNT(*)::integer,
	$1,
	$1
FROM monitor.items i
WHERE i.group_id IS NOT NULL
GROUP BY i.group_id
ON CONFLICT (group_id) DO UPDATE
SET first_seen_at = EXCLUDED.first_seen_at,
    last_updated_at = EXCLUDED.last_updated_at,
    member_count = EXCLUDED.member_count,
    updated_at = EXCLUDED.updated_at
`
	affected, err := p.Exec(ctx, q, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("rebuild group meta: %w", err)
	}
	return affected, nil
}
