// Package adjudicate classifies externally computed similarity scores into
// UNIQUE / REVIEW / DUPLICATE verdicts. It is pure policy: no I/O, no state,
// reusable for interactive pre-issuance checks and batch re-checks alike.
package adjudicate

import (
	"sort"

	dErrors "certdedup/pkg/domain-errors"
)

// Status is the adjudication verdict for one candidate.
type Status string

const (
	StatusUnique    Status = "UNIQUE"
	StatusReview    Status = "REVIEW"
	StatusDuplicate Status = "DUPLICATE"
)

// Match is one pairwise outcome from the external scorer. Scores are real
// numbers in [0,1]; the scorer owns their computation.
type Match struct {
	MatchedID string  `json:"matchedCandidateId"`
	Score     float64 `json:"score"`
	SourceRef string  `json:"sourceRef,omitempty"`
}

// Thresholds configures the classification bands. Values arrive per call so
// callers can tune them per request without recompiling.
type Thresholds struct {
	Unique    float64
	Duplicate float64
}

// DefaultThresholds are the bands observed in production.
func DefaultThresholds() Thresholds {
	return Thresholds{Unique: 0.80, Duplicate: 0.95}
}

// Validate checks 0 <= Unique <= Duplicate <= 1.
func (t Thresholds) Validate() error {
	if t.Unique < 0 || t.Duplicate > 1 || t.Unique > t.Duplicate {
		return dErrors.Newf(dErrors.CodeValidation,
			"thresholds must satisfy 0 <= unique (%v) <= duplicate (%v) <= 1", t.Unique, t.Duplicate)
	}
	return nil
}

// Decision is the outcome of classifying one candidate's matches.
type Decision struct {
	Status Status
	// Score is the best (maximum) score among matches; 0 when none.
	Score float64
	// Matches is the input list sorted descending by score.
	Matches []Match
}

// Classify maps the top-K matches for one candidate onto a verdict:
//
//	best <  t.Unique              -> UNIQUE
//	t.Unique <= best < t.Duplicate -> REVIEW
//	best >= t.Duplicate           -> DUPLICATE
//
// An empty match list yields UNIQUE with score 0. The input is re-sorted
// descending rather than trusted, so a scorer that returns unordered matches
// cannot skew the reported best score.
func Classify(matches []Match, t Thresholds) Decision {
	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	best := 0.0
	if len(sorted) > 0 {
		best = sorted[0].Score
	}

	status := StatusUnique
	switch {
	case best >= t.Duplicate:
		status = StatusDuplicate
	case best >= t.Unique:
		status = StatusReview
	}

	return Decision{Status: status, Score: best, Matches: sorted}
}
