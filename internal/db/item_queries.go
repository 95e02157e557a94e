package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"horse.fit/trendwatch/internal/grouping"
)

const itemColumns = `
	i.item_id,
	i.title,
	i.summary,
	i.link,
	i.published_at,
	i.tags,
	i.entities,
	i.group_id
`

// NewItem is the write model for one ingested item.
type NewItem struct {
	Title       string
	Summary     *string
	Link        string
	PublishedAt *time.Time
	Author      *string
	Language    *string
	Tags        []string
	Entities    []string
}

// InsertItem inserts one item. The link is the exact-duplicate key: a
// conflicting link leaves the existing row untouched and reports
// inserted=false.
func (p *Pool) InsertItem(ctx context.Context, item NewItem, now time.Time) (int64, bool, error) {
	tagsJSON, err := marshalStringList(item.Tags)
	if err != nil {
		return 0, false, fmt.Errorf("marshal tags: %w", err)
	}
	entitiesJSON, err := marshalStringList(item.Entities)
	if err != nil {
		return 0, false, fmt.Errorf("marshal entities: %w", err)
	}

	const q = `
INSERT INTO monitor.items (
	title,
	summary,
	link,
	published_at,
	author,
	language,
	tags,
	entities,
	created_at,
	updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $9)
ON CONFLICT (link) DO NOTHING
RETURNING item_id
`

	var itemID int64
	err = p.QueryRow(ctx, q,
		item.Title,
		item.Summary,
		item.Link,
		item.PublishedAt,
		item.Author,
		item.Language,
		tagsJSON,
		entitiesJSON,
		now,
	).Scan(&itemID)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("insert item link=%q: %w", item.Link, err)
	}
	return itemID, true, nil
}

// LinkExists reports whether any item other than excludeID carries link.
func (p *Pool) LinkExists(ctx context.Context, link string, excludeID int64) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1
	FROM monitor.items i
	WHERE i.link = $1
	  AND i.item_id <> $2
)
`
	var exists bool
	if err := p.QueryRow(ctx, q, link, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check link exists: %w", err)
	}
	return exists, nil
}

// RecentDocuments returns items published at or after cutoff, most recent
// first. Items without a publish time are never candidates.
func (p *Pool) RecentDocuments(ctx context.Context, cutoff time.Time) ([]grouping.Document, error) {
	const q = `
SELECT ` + itemColumns + `
FROM monitor.items i
WHERE i.published_at IS NOT NULL
  AND i.published_at >= $1
ORDER BY i.published_at DESC, i.item_id DESC
`
	rows, err := p.Query(ctx, q, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("query recent items: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// DocumentsPublishedAfter returns items published strictly after since,
// ascending by publish time.
func (p *Pool) DocumentsPublishedAfter(ctx context.Context, since time.Time) ([]grouping.Document, error) {
	const q = `
SELECT ` + itemColumns + `
FROM monitor.items i
WHERE i.published_at IS NOT NULL
  AND i.published_at > $1
ORDER BY i.published_at ASC, i.item_id ASC
`
	rows, err := p.Query(ctx, q, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query items after watermark: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// DocumentsPublishedBetween returns items published in [from, to],
// ascending by publish time.
func (p *Pool) DocumentsPublishedBetween(ctx context.Context, from, to time.Time) ([]grouping.Document, error) {
	const q = `
SELECT ` + itemColumns + `
FROM monitor.items i
WHERE i.published_at IS NOT NULL
  AND i.published_at >= $1
  AND i.published_at <= $2
ORDER BY i.published_at ASC, i.item_id ASC
`
	rows, err := p.Query(ctx, q, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query items in window: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// AssignGroup persists one item's group reference.
func (p *Pool) AssignGroup(ctx context.Context, itemID, groupID int64) error {
	const q = `
UPDATE monitor.items
SET group_id = $2,
    updated_at = now()
WHERE item_id = $1
`
	affected, err := p.Exec(ctx, q, itemID, groupID)
	if err != nil {
		return fmt.Errorf("assign item %d to group %d: %w", itemID, groupID, err)
	}
	if affected == 0 {
		return fmt.Errorf("assign item %d to group %d: item not found", itemID, groupID)
	}
	return nil
}

func scanDocuments(rows *Rows) ([]grouping.Document, error) {
	var docs []grouping.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return docs, nil
}

func scanDocument(rows *Rows) (grouping.Document, error) {
	var (
		doc          grouping.Document
		summary      *string
		publishedAt  *time.Time
		tagsJSON     []byte
		entitiesJSON []byte
		groupID      *int64
	)
	if err := rows.Scan(
		&doc.ID,
		&doc.Title,
		&summary,
		&doc.Link,
		&publishedAt,
		&tagsJSON,
		&entitiesJSON,
		&groupID,
	); err != nil {
		return grouping.Document{}, fmt.Errorf("scan item: %w", err)
	}

	if summary != nil {
		doc.Summary = *summary
	}
	doc.PublishedAt = publishedAt
	doc.GroupID = groupID

	tags, err := unmarshalStringList(tagsJSON)
	if err != nil {
		return grouping.Document{}, fmt.Errorf("decode item %d tags: %w", doc.ID, err)
	}
	doc.Tags = tags

	entities, err := unmarshalStringList(entitiesJSON)
	if err != nil {
		return grouping.Document{}, fmt.Errorf("decode item %d entities: %w", doc.ID, err)
	}
	doc.Entities = entities

	return doc, nil
}

func marshalStringList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func unmarshalStringList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}
