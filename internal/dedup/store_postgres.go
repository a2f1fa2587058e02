package dedup

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"certdedup/internal/adjudicate"
	id "certdedup/pkg/domain"
	"certdedup/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations; it backs the at-most-one-result-per-hash invariant.
const uniqueViolation = "23505"

// PostgresResultStore persists dedup results in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE dedup_results (
//	    id           UUID PRIMARY KEY,
//	    subject_id   UUID NOT NULL,
//	    course_id    UUID NOT NULL,
//	    item_id      TEXT NOT NULL,
//	    content_hash TEXT NOT NULL,
//	    status       TEXT NOT NULL,
//	    score        DOUBLE PRECISION NOT NULL,
//	    matched_with JSONB NOT NULL,
//	    checked_at   TIMESTAMPTZ NOT NULL,
//	    UNIQUE (subject_id, course_id, content_hash)
//	);
type PostgresResultStore struct {
	db *sql.DB
}

func NewPostgresResultStore(db *sql.DB) *PostgresResultStore {
	return &PostgresResultStore{db: db}
}

func (s *PostgresResultStore) Create(ctx context.Context, result Result) error {
	matched, err := json.Marshal(result.MatchedWith)
	if err != nil {
		return fmt.Errorf("marshal matched_with: %w", err)
	}
	query := `
		INSERT INTO dedup_results (id, subject_id, course_id, item_id, content_hash, status, score, matched_with, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(result.ID),
		uuid.UUID(result.SubjectID),
		uuid.UUID(result.CourseID),
		result.ItemID,
		result.ContentHash,
		string(result.Status),
		result.SimilarityScore,
		matched,
		result.CheckedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert dedup result: %w", err)
	}
	return nil
}

func (s *PostgresResultStore) FindByHash(ctx context.Context, subjectID id.SubjectID, courseID id.CourseID, contentHash string) (Result, error) {
	query := `
		SELECT id, subject_id, course_id, item_id, content_hash, status, score, matched_with, checked_at
		FROM dedup_results
		WHERE subject_id = $1 AND course_id = $2 AND content_hash = $3
	`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(subjectID), uuid.UUID(courseID), contentHash)

	var (
		result           Result
		checkID, subject uuid.UUID
		course           uuid.UUID
		status           string
		matched          []byte
	)
	err := row.Scan(&checkID, &subject, &course, &result.ItemID, &result.ContentHash, &status, &result.SimilarityScore, &matched, &result.CheckedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, sentinel.ErrNotFound
		}
		return Result{}, fmt.Errorf("scan dedup result: %w", err)
	}

	result.ID = id.CheckID(checkID)
	result.SubjectID = id.SubjectID(subject)
	result.CourseID = id.CourseID(course)
	result.Status = adjudicate.Status(status)
	if err := json.Unmarshal(matched, &result.MatchedWith); err != nil {
		return Result{}, fmt.Errorf("unmarshal matched_with: %w", err)
	}
	return result, nil
}
