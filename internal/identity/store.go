package identity

import (
	"context"
	"time"

	id "certdedup/pkg/domain"
)

// Store is interface-driven to keep the matching logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring the engine.
// Lookups exclude the given subject so a record never collides with itself.
// Implementations return sentinel.ErrNotFound when no other subject matches.
type Store interface {
	// Upsert writes the subject's canonical identity fields. This is the
	// sole mutation path; prior values are superseded, not deleted.
	Upsert(ctx context.Context, record Record) error

	// FindByNormalizedIDCard returns another subject whose stored id-card
	// equals value.
	FindByNormalizedIDCard(ctx context.Context, value string, excludeID id.SubjectID) (Record, error)

	// FindByComboFields returns another subject whose stored
	// (name, date of birth, phone) triple equals the given one exactly.
	FindByComboFields(ctx context.Context, name string, dob time.Time, phone string, excludeID id.SubjectID) (Record, error)
}
