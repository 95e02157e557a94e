package grouping

// Predicate decides whether a candidate survives pre-filtering against the
// target document. Predicates are cheap necessary conditions, not
// sufficient ones; the augmented scorer still makes the final call.
type Predicate func(target, candidate Document) bool

// identityPredicate drops the target itself and candidates that cannot be
// joined because they carry no link.
func identityPredicate(target, candidate Document) bool {
	if candidate.ID == target.ID {
		return false
	}
	return candidate.Link != ""
}

// shinglePredicate requires at least one shared title 3-gram shingle when
// both sides have a non-empty shingle set.
func shinglePredicate(target, candidate Document) bool {
	targetShingles := titleShingles(target.Title)
	candidateShingles := titleShingles(candidate.Title)
	if len(targetShingles) == 0 || len(candidateShingles) == 0 {
		return true
	}
	return overlapCount(targetShingles, candidateShingles) > 0
}

// metadataPredicate drops a candidate only when both sides carry entity
// names AND tags and neither set overlaps. A missing signal on either side
// keeps the candidate.
func metadataPredicate(target, candidate Document) bool {
	targetEntities := normalizedLabelSet(target.Entities)
	candidateEntities := normalizedLabelSet(candidate.Entities)
	targetTags := normalizedLabelSet(target.Tags)
	candidateTags := normalizedLabelSet(candidate.Tags)

	if len(targetEntities) == 0 || len(candidateEntities) == 0 {
		return true
	}
	if len(targetTags) == 0 || len(candidateTags) == 0 {
		return true
	}
	return overlapCount(targetEntities, candidateEntities) > 0 ||
		overlapCount(targetTags, candidateTags) > 0
}

// CandidateFilter narrows a lookback window down to documents worth scoring.
type CandidateFilter struct {
	predicates []Predicate
}

// NewCandidateFilter builds the default predicate chain: identity exclusion,
// title shingle overlap, entity/tag overlap.
func NewCandidateFilter() *CandidateFilter {
	return &CandidateFilter{
		predicates: []Predicate{
			identityPredicate,
			shinglePredicate,
			metadataPredicate,
		},
	}
}

// Filter returns the candidates that pass every predicate, preserving order.
func (f *CandidateFilter) Filter(target Document, candidates []Document) []Document {
	if f == nil || len(candidates) == 0 {
		return nil
	}

	kept := make([]Document, 0, len(candidates))
outer:
	for _, candidate := range candidates {
		for _, keep := range f.predicates {
			if !keep(target, candidate) {
				continue outer
			}
		}
		kept = append(kept, candidate)
	}
	return kept
}
