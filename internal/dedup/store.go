package dedup

import (
	"context"

	id "certdedup/pkg/domain"
)

// ResultStore persists adjudication results for audit and idempotence.
//
// The store enforces at-most-one-result-per-hash: Create returns
// sentinel.ErrConflict when a result for the same (subject, course, content
// hash) already exists, and the caller resolves the race by re-reading the
// first writer's result. FindByHash returns sentinel.ErrNotFound when no
// prior result exists.
type ResultStore interface {
	Create(ctx context.Context, result Result) error
	FindByHash(ctx context.Context, subjectID id.SubjectID, courseID id.CourseID, contentHash string) (Result, error)
}
