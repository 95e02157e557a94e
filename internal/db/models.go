package db

import (
	"encoding/json"
	"time"
)

// Item maps monitor.items. Title, summary, link, and published_at are
// immutable after ingestion; tags and entities are set by upstream
// classification; group_id is owned by the grouping engine.
type Item struct {
	ItemID      int64           `gorm:"column:item_id;primaryKey;autoIncrement"`
	ItemUUID    string          `gorm:"column:item_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	Title       string          `gorm:"column:title;type:text;not null"`
	Summary     *string         `gorm:"column:summary;type:text"`
	Link        string          `gorm:"column:link;type:text;not null;unique"`
	PublishedAt *time.Time      `gorm:"column:published_at;type:timestamptz;index"`
	Author      *string         `gorm:"column:author;type:text"`
	Language    *string         `gorm:"column:language;type:text"`
	Tags        json.RawMessage `gorm:"column:tags;type:jsonb;not null;default:'[]'"`
	Entities    json.RawMessage `gorm:"column:entities;type:jsonb;not null;default:'[]'"`
	GroupID     *int64          `gorm:"column:group_id;type:bigint;index"`
	CreatedAt   time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Item) TableName() string { return "monitor.items" }

// GroupMeta maps monitor.group_meta. The group id equals the seed item's
// id; the row is a materialized aggregate over monitor.items.group_id and
// can be rebuilt from it.
type GroupMeta struct {
	GroupID       int64     `gorm:"column:group_id;primaryKey"`
	FirstSeenAt   time.Time `gorm:"column:first_seen_at;type:timestamptz;not null;index"`
	LastUpdatedAt time.Time `gorm:"column:last_updated_at;type:timestamptz;not null;index"`
	MemberCount   int       `gorm:"column:member_count;type:integer;not null;default:1"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (GroupMeta) TableName() string { return "monitor.group_meta" }

func autoMigrateModels() []any {
	return []any{
		&Item{},
		&GroupMeta{},
	}
}
