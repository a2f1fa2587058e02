package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"certdedup/internal/adjudicate"
	id "certdedup/pkg/domain"
	dErrors "certdedup/pkg/domain-errors"
)

// CandidateItem is one unit submitted for content-similarity checking. It is
// ephemeral: it exists for the duration of one check request and is not
// persisted; only the resulting adjudication is.
type CandidateItem struct {
	ItemID string
	// Payload is the document content. Callers that already hold a digest
	// may set ContentHash and omit the payload.
	Payload     []byte
	ContentHash string
	// Descriptive metadata forwarded to the scorer.
	DeclaredName string
	DateOfBirth  time.Time
	Course       string
}

// Hash returns the item's content hash, deriving sha256-hex from the payload
// when no precomputed hash was supplied.
func (c *CandidateItem) Hash() string {
	if c.ContentHash != "" {
		return c.ContentHash
	}
	sum := sha256.Sum256(c.Payload)
	return hex.EncodeToString(sum[:])
}

// Validate rejects items that can neither be scored nor keyed.
func (c *CandidateItem) Validate() error {
	if c.ItemID == "" {
		return dErrors.New(dErrors.CodeValidation, "item id is required")
	}
	if len(c.Payload) == 0 && c.ContentHash == "" {
		return dErrors.Newf(dErrors.CodeValidation, "item %s has neither payload nor content hash", c.ItemID)
	}
	return nil
}

// Options is call-time adjudication configuration; zero values fall back to
// the production defaults.
type Options struct {
	TopK       int
	Thresholds adjudicate.Thresholds
}

// withDefaults fills unset fields from defaults and validates the result.
func (o Options) withDefaults(defaults Options) (Options, error) {
	if o.TopK == 0 {
		o.TopK = defaults.TopK
	}
	if o.Thresholds == (adjudicate.Thresholds{}) {
		o.Thresholds = defaults.Thresholds
	}
	if o.TopK < 1 {
		return Options{}, dErrors.Newf(dErrors.CodeValidation, "topK must be >= 1, got %d", o.TopK)
	}
	if err := o.Thresholds.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Result is the persisted adjudication outcome for one candidate. It is
// immutable once created and keyed by (subject, course, content hash) so a
// repeated check against the same hash replays the prior result instead of
// re-scoring.
type Result struct {
	ID              id.CheckID         `json:"id"`
	SubjectID       id.SubjectID       `json:"subject_id"`
	CourseID        id.CourseID        `json:"course_id"`
	ItemID          string             `json:"itemId"`
	ContentHash     string             `json:"docHash"`
	Status          adjudicate.Status  `json:"status"`
	SimilarityScore float64            `json:"similarityScore"`
	MatchedWith     []adjudicate.Match `json:"matchedWith"`
	CheckedAt       time.Time          `json:"checkedAt"`
}
