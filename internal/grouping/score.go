package grouping

import (
	"math"
	"time"
)

const (
	entityBonusStrong = 0.15
	entityBonusWeak   = 0.10
	tagBonusPerMatch  = 0.05
	tagBonusCap       = 0.10
	timeBonusClose    = 0.05
	timeBonusNear     = 0.03
	timeBonusCloseMax = 24 * time.Hour
	timeBonusNearMax  = 72 * time.Hour
)

// ScoreBreakdown keeps each signal's contribution auditable.
type ScoreBreakdown struct {
	Base        float64
	EntityBonus float64
	TagBonus    float64
	TimeBonus   float64
	Total       float64
}

// AugmentedScorer combines base text similarity with additive bonuses from
// entity overlap, tag overlap, and publish-time proximity. Pure text
// similarity under-weights continuing coverage of an evolving story.
type AugmentedScorer struct {
	base *Scorer
}

func NewAugmentedScorer(base *Scorer) *AugmentedScorer {
	if base == nil {
		base = NewScorer()
	}
	return &AugmentedScorer{base: base}
}

// Score returns the final decision score in [0,1] with its breakdown.
func (a *AugmentedScorer) Score(target, candidate Document) ScoreBreakdown {
	breakdown := ScoreBreakdown{
		Base:        a.base.Similarity(target.ComposedText(), candidate.ComposedText()),
		EntityBonus: entityBonus(target, candidate),
		TagBonus:    tagBonus(target, candidate),
		TimeBonus:   timeBonus(target.PublishedAt, candidate.PublishedAt),
	}
	breakdown.Total = clamp01(breakdown.Base + breakdown.EntityBonus + breakdown.TagBonus + breakdown.TimeBonus)
	return breakdown
}

func entityBonus(target, candidate Document) float64 {
	shared := overlapCount(normalizedLabelSet(target.Entities), normalizedLabelSet(candidate.Entities))
	switch {
	case shared >= 2:
		return entityBonusStrong
	case shared == 1:
		return entityBonusWeak
	default:
		return 0
	}
}

func tagBonus(target, candidate Document) float64 {
	shared := overlapCount(normalizedLabelSet(target.Tags), normalizedLabelSet(candidate.Tags))
	if shared == 0 {
		return 0
	}
	return math.Min(tagBonusCap, tagBonusPerMatch*float64(shared))
}

func timeBonus(left, right *time.Time) float64 {
	if left == nil || right == nil || left.IsZero() || right.IsZero() {
		return 0
	}
	delta := left.Sub(*right)
	if delta < 0 {
		delta = -delta
	}
	switch {
	case delta <= timeBonusCloseMax:
		return timeBonusClose
	case delta <= timeBonusNearMax:
		return timeBonusNear
	default:
		return 0
	}
}
