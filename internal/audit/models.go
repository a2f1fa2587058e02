package audit

import (
	"context"
	"time"

	id "certdedup/pkg/domain"
)

// Event is emitted from domain logic to capture key dedup actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time    `json:"timestamp"`
	SubjectID id.SubjectID `json:"subject_id"`
	Action    string       `json:"action"`
	Decision  string       `json:"decision,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	CourseID  string       `json:"course_id,omitempty"`
	ItemID    string       `json:"item_id,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

// Audit actions recorded by the dedup core.
const (
	EventIdentityChecked       = "identity.checked"
	EventCertificateAdjudged   = "certificate.adjudicated"
	EventCertificateCheckError = "certificate.check_failed"
)

// Store is the append-only audit sink.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]Event, error)
}
