package grouping

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"horse.fit/trendwatch/internal/globaltime"
)

const (
	DefaultSimilarityThreshold = 0.2
	DefaultLookbackDays        = 21
)

// Outcome is the terminal state of one processing attempt.
type Outcome string

const (
	// OutcomeSkipped covers documents the policy never evaluates: no link,
	// or an existing group assignment without the reprocess option.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeExactDuplicate means another document already carries the
	// identical link; no group is assigned and no metadata is touched.
	OutcomeExactDuplicate Outcome = "exact_duplicate"

	// OutcomeJoined means the document joined an existing group.
	OutcomeJoined Outcome = "joined"

	// OutcomeSeeded means the document became its own group.
	OutcomeSeeded Outcome = "seeded"
)

// Options are the per-run decision parameters. They are threaded through
// constructors so concurrent runs with different parameters cannot
// interfere.
type Options struct {
	SimilarityThreshold float64
	LookbackDays        int

	// Reprocess forces re-evaluation of documents that already carry a
	// group_id. Off by default: a reassignment would silently leave the old
	// group's member_count stale.
	Reprocess bool
}

func (o Options) withDefaults() Options {
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.LookbackDays <= 0 {
		o.LookbackDays = DefaultLookbackDays
	}
	return o
}

// Decision reports what happened to one document.
type Decision struct {
	Outcome     Outcome
	GroupID     *int64
	BestMatchID *int64
	BestScore   float64
}

// Engine applies the grouping state machine to single documents: exact
// duplicate short-circuit, candidate filtering, augmented scoring, join or
// seed, metadata sync.
type Engine struct {
	store  Store
	filter *CandidateFilter
	scorer *AugmentedScorer
	logger zerolog.Logger
	opts   Options
}

func NewEngine(store Store, scorer *AugmentedScorer, logger zerolog.Logger, opts Options) *Engine {
	if scorer == nil {
		scorer = NewAugmentedScorer(NewScorer())
	}
	return &Engine{
		store:  store,
		filter: NewCandidateFilter(),
		scorer: scorer,
		logger: logger,
		opts:   opts.withDefaults(),
	}
}

// ProcessDocument runs one document through the assignment policy. The
// group assignment is persisted before returning so later documents in the
// same run see up-to-date state. Metadata sync failures are logged and
// swallowed; the assignment stands.
func (e *Engine) ProcessDocument(ctx context.Context, doc Document) (Decision, error) {
	if e == nil || e.store == nil {
		return Decision{}, fmt.Errorf("grouping engine is not initialized")
	}

	if doc.Link == "" {
		return Decision{Outcome: OutcomeSkipped}, nil
	}
	if doc.GroupID != nil && !e.opts.Reprocess {
		e.logger.Debug().Int64("document_id", doc.ID).Int64("group_id", *doc.GroupID).
			Msg("document already grouped; skipping")
		return Decision{Outcome: OutcomeSkipped, GroupID: doc.GroupID}, nil
	}

	exact, err := e.store.LinkExists(ctx, doc.Link, doc.ID)
	if err != nil {
		return Decision{}, fmt.Errorf("check exact duplicate for document %d: %w", doc.ID, err)
	}
	if exact {
		e.logger.Debug().Int64("document_id", doc.ID).Str("link", doc.Link).
			Msg("exact link duplicate; no group assigned")
		return Decision{Outcome: OutcomeExactDuplicate}, nil
	}

	reference := globaltime.UTC()
	if doc.PublishedAt != nil && !doc.PublishedAt.IsZero() {
		reference = doc.PublishedAt.UTC()
	}
	cutoff := reference.AddDate(0, 0, -e.opts.LookbackDays)

	recent, err := e.store.RecentDocuments(ctx, cutoff)
	if err != nil {
		return Decision{}, fmt.Errorf("load lookback window for document %d: %w", doc.ID, err)
	}
	candidates := e.filter.Filter(doc, recent)

	var best *Document
	bestScore := 0.0
	for i := range candidates {
		breakdown := e.scorer.Score(doc, candidates[i])
		e.logger.Trace().
			Int64("document_id", doc.ID).
			Int64("candidate_id", candidates[i].ID).
			Float64("base", breakdown.Base).
			Float64("entity_bonus", breakdown.EntityBonus).
			Float64("tag_bonus", breakdown.TagBonus).
			Float64("time_bonus", breakdown.TimeBonus).
			Float64("total", breakdown.Total).
			Msg("candidate scored")
		// Strictly greater: the first candidate with the best score in
		// most-recent-first order wins ties.
		if breakdown.Total > bestScore {
			bestScore = breakdown.Total
			best = &candidates[i]
		}
	}

	if best != nil && bestScore >= e.opts.SimilarityThreshold {
		groupID := best.ID
		if best.GroupID != nil {
			groupID = *best.GroupID
		}
		if err := e.store.AssignGroup(ctx, doc.ID, groupID); err != nil {
			return Decision{}, fmt.Errorf("assign document %d to group %d: %w", doc.ID, groupID, err)
		}
		e.syncJoin(ctx, groupID, *best)
		e.logger.Info().
			Int64("document_id", doc.ID).
			Int64("group_id", groupID).
			Float64("best_score", bestScore).
			Msg("document joined group")
		return Decision{
			Outcome:     OutcomeJoined,
			GroupID:     &groupID,
			BestMatchID: &best.ID,
			BestScore:   bestScore,
		}, nil
	}

	if err := e.store.AssignGroup(ctx, doc.ID, doc.ID); err != nil {
		return Decision{}, fmt.Errorf("seed document %d as its own group: %w", doc.ID, err)
	}
	e.syncSeed(ctx, doc)
	e.logger.Info().
		Int64("document_id", doc.ID).
		Float64("best_score", bestScore).
		Msg("document seeded new group")
	groupID := doc.ID
	decision := Decision{Outcome: OutcomeSeeded, GroupID: &groupID, BestScore: bestScore}
	if best != nil {
		decision.BestMatchID = &best.ID
	}
	return decision, nil
}

// syncJoin ensures the group record reflects one more member. A missing
// record is created lazily with the matched document's publish time as the
// group's first-seen time.
func (e *Engine) syncJoin(ctx context.Context, groupID int64, matched Document) {
	now := globaltime.UTC()

	meta, err := e.store.GetGroupMeta(ctx, groupID)
	if err != nil {
		e.logger.Warn().Err(err).Int64("group_id", groupID).Msg("group metadata lookup failed")
		return
	}
	if meta != nil {
		if err := e.store.TouchGroupMeta(ctx, groupID, now); err != nil {
			e.logger.Warn().Err(err).Int64("group_id", groupID).Msg("group metadata update failed")
		}
		return
	}

	firstSeen := now
	if matched.PublishedAt != nil && !matched.PublishedAt.IsZero() {
		firstSeen = matched.PublishedAt.UTC()
	}
	if err := e.store.CreateGroupMeta(ctx, GroupMeta{
		GroupID:       groupID,
		FirstSeenAt:   firstSeen,
		LastUpdatedAt: now,
		MemberCount:   2,
	}); err != nil {
		e.logger.Warn().Err(err).Int64("group_id", groupID).Msg("group metadata create failed")
	}
}

// syncSeed creates the group record for a fresh seed unless one exists.
func (e *Engine) syncSeed(ctx context.Context, doc Document) {
	firstSeen := globaltime.UTC()
	if doc.PublishedAt != nil && !doc.PublishedAt.IsZero() {
		firstSeen = doc.PublishedAt.UTC()
	}

	meta, err := e.store.GetGroupMeta(ctx, doc.ID)
	if err != nil {
		e.logger.Warn().Err(err).Int64("group_id", doc.ID).Msg("group metadata lookup failed")
		return
	}
	if meta != nil {
		return
	}
	if err := e.store.CreateGroupMeta(ctx, GroupMeta{
		GroupID:       doc.ID,
		FirstSeenAt:   firstSeen,
		LastUpdatedAt: firstSeen,
		MemberCount:   1,
	}); err != nil {
		e.logger.Warn().Err(err).Int64("group_id", doc.ID).Msg("group metadata create failed")
	}
}
