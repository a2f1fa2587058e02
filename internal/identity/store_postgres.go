package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	id "certdedup/pkg/domain"
	"certdedup/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// Postgres persists identity records in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE identities (
//	    subject_id         UUID PRIMARY KEY,
//	    id_card_normalized TEXT NOT NULL DEFAULT '',
//	    name_normalized    TEXT NOT NULL DEFAULT '',
//	    date_of_birth      DATE,
//	    phone_e164         TEXT NOT NULL DEFAULT '',
//	    updated_at         TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX identities_id_card_idx ON identities (id_card_normalized)
//	    WHERE id_card_normalized <> '';
//	CREATE INDEX identities_combo_idx
//	    ON identities (name_normalized, date_of_birth, phone_e164);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Upsert(ctx context.Context, record Record) error {
	query := `
		INSERT INTO identities (subject_id, id_card_normalized, name_normalized, date_of_birth, phone_e164, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subject_id) DO UPDATE SET
			id_card_normalized = EXCLUDED.id_card_normalized,
			name_normalized    = EXCLUDED.name_normalized,
			date_of_birth      = EXCLUDED.date_of_birth,
			phone_e164         = EXCLUDED.phone_e164,
			updated_at         = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.SubjectID),
		record.IDCardNormalized,
		record.NameNormalized,
		nullDate(record.DateOfBirth),
		record.PhoneE164,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert identity: %w", err)
	}
	return nil
}

func (s *Postgres) FindByNormalizedIDCard(ctx context.Context, value string, excludeID id.SubjectID) (Record, error) {
	if value == "" {
		return Record{}, sentinel.ErrNotFound
	}
	query := `
		SELECT subject_id, id_card_normalized, name_normalized, date_of_birth, phone_e164, updated_at
		FROM identities
		WHERE id_card_normalized = $1 AND subject_id <> $2
		LIMIT 1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, value, uuid.UUID(excludeID)))
}

func (s *Postgres) FindByComboFields(ctx context.Context, name string, dob time.Time, phone string, excludeID id.SubjectID) (Record, error) {
	if name == "" || dob.IsZero() || phone == "" {
		return Record{}, sentinel.ErrNotFound
	}
	query := `
		SELECT subject_id, id_card_normalized, name_normalized, date_of_birth, phone_e164, updated_at
		FROM identities
		WHERE name_normalized = $1 AND date_of_birth = $2 AND phone_e164 = $3 AND subject_id <> $4
		LIMIT 1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, name, DateKey(dob), phone, uuid.UUID(excludeID)))
}

func (s *Postgres) scanOne(row *sql.Row) (Record, error) {
	var (
		record    Record
		subjectID uuid.UUID
		dob       sql.NullTime
	)
	err := row.Scan(&subjectID, &record.IDCardNormalized, &record.NameNormalized, &dob, &record.PhoneE164, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("scan identity: %w", err)
	}
	record.SubjectID = id.SubjectID(subjectID)
	if dob.Valid {
		record.DateOfBirth = DateKey(dob.Time)
	}
	return record, nil
}

func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: DateKey(t), Valid: true}
}
