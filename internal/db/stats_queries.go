package db

import (
	"context"
	"fmt"
	"time"
)

// Stats is the read model for the stats endpoint.
type Stats struct {
	Items              int64      `json:"items"`
	GroupedItems       int64      `json:"grouped_items"`
	Groups             int64      `json:"groups"`
	LastPublishedAt    *time.Time `json:"last_published_at,omitempty"`
	LastGroupUpdatedAt *time.Time `json:"last_group_updated_at,omitempty"`
}

func (p *Pool) QueryStats(ctx context.Context) (Stats, error) {
	const q = `
SELECT
	(SELECT COUNT(*) FROM monitor.items),
	(SELECT COUNT(*) FROM monitor.items WHERE group_id IS NOT NULL),
	(SELECT COUNT(*) FROM monitor.group_meta),
	(SELECT MAX(published_at) FROM monitor.items),
	(SELECT MAX(last_updated_at) FROM monitor.group_meta)
`
	var stats Stats
	if err := p.QueryRow(ctx, q).Scan(
		&stats.Items,
		&stats.GroupedItems,
		&stats.Groups,
		&stats.LastPublishedAt,
		&stats.LastGroupUpdatedAt,
	); err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return stats, nil
}
