//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the DDL documented on the Postgres store types.
const schema = `
CREATE TABLE IF NOT EXISTS identities (
    subject_id         UUID PRIMARY KEY,
    id_card_normalized TEXT NOT NULL DEFAULT '',
    name_normalized    TEXT NOT NULL DEFAULT '',
    date_of_birth      DATE,
    phone_e164         TEXT NOT NULL DEFAULT '',
    updated_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS identities_id_card_idx ON identities (id_card_normalized)
    WHERE id_card_normalized <> '';
CREATE INDEX IF NOT EXISTS identities_combo_idx
    ON identities (name_normalized, date_of_birth, phone_e164);

CREATE TABLE IF NOT EXISTS dedup_results (
    id           UUID PRIMARY KEY,
    subject_id   UUID NOT NULL,
    course_id    UUID NOT NULL,
    item_id      TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    status       TEXT NOT NULL,
    score        DOUBLE PRECISION NOT NULL,
    matched_with JSONB NOT NULL,
    checked_at   TIMESTAMPTZ NOT NULL,
    UNIQUE (subject_id, course_id, content_hash)
);
`

// PostgresContainer wraps a testcontainers Postgres instance with an open
// connection pool and the service schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("certdedup_test"),
		tcpostgres.WithUsername("certdedup"),
		tcpostgres.WithPassword("certdedup"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	// The container is shared across suites; Ryuk terminates it after the
	// test binary exits, so no t.Cleanup here.
	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// TruncateTables empties the given tables, restarting identity sequences.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
