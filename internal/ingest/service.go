package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/trendwatch/internal/db"
	"horse.fit/trendwatch/internal/globaltime"
	"horse.fit/trendwatch/internal/langdetect"
	payloadschema "horse.fit/trendwatch/schema"
)

// Service validates and inserts raw item payloads. It sits at the ingest
// boundary: everything downstream (grouping, the API) reads what it writes.
type Service struct {
	pool   *db.Pool
	logger zerolog.Logger
}

type Result struct {
	ItemID   int64
	Inserted bool
	Link     string
}

func NewService(pool *db.Pool, logger zerolog.Logger) *Service {
	return &Service{
		pool:   pool,
		logger: logger,
	}
}

// IngestOne validates one payload and inserts the item. A payload whose
// link already exists is reported as Inserted=false, not an error.
func (s *Service) IngestOne(ctx context.Context, payload json.RawMessage) (Result, error) {
	if s == nil || s.pool == nil {
		return Result{}, fmt.Errorf("ingest service is not initialized")
	}

	item, err := payloadschema.ValidateItemPayload(payload)
	if err != nil {
		return Result{}, fmt.Errorf("validate item payload: %w", err)
	}

	var publishedAt *time.Time
	if item.PublishedAt != nil {
		ts, parseErr := time.Parse(time.RFC3339, strings.TrimSpace(*item.PublishedAt))
		if parseErr != nil {
			return Result{}, fmt.Errorf("parse published_at: %w", parseErr)
		}
		utc := ts.UTC()
		publishedAt = &utc
	}

	var language *string
	sample := item.Title
	if item.Summary != nil {
		sample = sample + " " + *item.Summary
	}
	if code := langdetect.DetectISO6391(sample); code != "" {
		language = &code
	}

	entities := make([]string, 0, len(item.Entities))
	for _, entity := range item.Entities {
		entities = append(entities, strings.TrimSpace(entity.Name))
	}

	link := strings.TrimSpace(item.Link)
	itemID, inserted, err := s.pool.InsertItem(ctx, db.NewItem{
		Title:       strings.TrimSpace(item.Title),
		Summary:     item.Summary,
		Link:        link,
		PublishedAt: publishedAt,
		Author:      item.Author,
		Language:    language,
		Tags:        item.Tags,
		Entities:    entities,
	}, globaltime.UTC())
	if err != nil {
		return Result{}, err
	}

	if inserted {
		s.logger.Info().Int64("item_id", itemID).Str("link", link).Msg("item ingested")
	} else {
		s.logger.Debug().Str("link", link).Msg("item already present; skipped")
	}

	return Result{ItemID: itemID, Inserted: inserted, Link: link}, nil
}
