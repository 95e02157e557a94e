package grouping

import (
	"math"
)

// Scorer computes a bounded [0,1] text similarity between two composed
// document texts. The primary method is cosine similarity over TF-IDF
// vectors (unigrams and bigrams, stop-words removed) fitted over exactly
// the two inputs. When a vector cannot be produced for either side, or the
// scorer was built in fallback mode, it degrades to Jaccard similarity over
// the raw token sets.
type Scorer struct {
	fallbackOnly bool
}

func NewScorer() *Scorer {
	return &Scorer{}
}

// NewFallbackScorer returns a scorer that skips the TF-IDF method entirely.
func NewFallbackScorer() *Scorer {
	return &Scorer{fallbackOnly: true}
}

// Similarity returns a score in [0,1]. Empty input on either side yields 0.
func (s *Scorer) Similarity(left, right string) float64 {
	if s == nil {
		return 0
	}
	if len(tokenize(left)) == 0 || len(tokenize(right)) == 0 {
		return 0
	}

	if !s.fallbackOnly {
		if score, ok := tfidfCosine(left, right); ok {
			return clamp01(score)
		}
	}
	return jaccardSimilarity(left, right)
}

// terms extracts unigrams and bigrams from stop-word-filtered tokens.
func terms(text string) []string {
	tokens := tokenize(text)
	filtered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, stop := stopwords[token]; stop {
			continue
		}
		filtered = append(filtered, token)
	}

	out := make([]string, 0, 2*len(filtered))
	out = append(out, filtered...)
	for i := 0; i+1 < len(filtered); i++ {
		out = append(out, filtered[i]+" "+filtered[i+1])
	}
	return out
}

// tfidfCosine fits TF-IDF over the two input texts only and returns their
// cosine similarity. Inverse document frequencies use the smoothed form
// ln((1+n)/(1+df))+1 with n=2 documents.
func tfidfCosine(left, right string) (float64, bool) {
	leftTerms := terms(left)
	rightTerms := terms(right)
	if len(leftTerms) == 0 || len(rightTerms) == 0 {
		return 0, false
	}

	leftCounts := termCounts(leftTerms)
	rightCounts := termCounts(rightTerms)

	idf := make(map[string]float64, len(leftCounts)+len(rightCounts))
	for term := range leftCounts {
		df := 1.0
		if _, ok := rightCounts[term]; ok {
			df = 2.0
		}
		idf[term] = math.Log(3.0/(1.0+df)) + 1.0
	}
	for term := range rightCounts {
		if _, ok := idf[term]; ok {
			continue
		}
		idf[term] = math.Log(3.0/2.0) + 1.0
	}

	leftVec := weigh(leftCounts, idf)
	rightVec := weigh(rightCounts, idf)

	leftNorm := l2norm(leftVec)
	rightNorm := l2norm(rightVec)
	if leftNorm == 0 || rightNorm == 0 {
		return 0, false
	}

	dot := 0.0
	for term, weight := range leftVec {
		if other, ok := rightVec[term]; ok {
			dot += weight * other
		}
	}
	return dot / (leftNorm * rightNorm), true
}

func termCounts(termList []string) map[string]float64 {
	counts := make(map[string]float64, len(termList))
	for _, term := range termList {
		counts[term]++
	}
	return counts
}

func weigh(counts map[string]float64, idf map[string]float64) map[string]float64 {
	vec := make(map[string]float64, len(counts))
	for term, count := range counts {
		vec[term] = count * idf[term]
	}
	return vec
}

func l2norm(vec map[string]float64) float64 {
	sum := 0.0
	for _, weight := range vec {
		sum += weight * weight
	}
	return math.Sqrt(sum)
}

// jaccardSimilarity is the degraded method: |intersection|/|union| over raw
// token sets, 0 when either set is empty.
func jaccardSimilarity(left, right string) float64 {
	leftSet := tokenSet(left)
	rightSet := tokenSet(right)
	if len(leftSet) == 0 || len(rightSet) == 0 {
		return 0
	}

	intersection := overlapCount(leftSet, rightSet)
	union := len(leftSet) + len(rightSet) - intersection
	if union <= 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
