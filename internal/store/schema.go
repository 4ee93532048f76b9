package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema statements run one at a time: the pgx driver's extended protocol
// rejects multi-statement batches.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		company_name  TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// Constraint names are load-bearing: the member repo maps violations
	// onto domain errors by name.
	`CREATE TABLE IF NOT EXISTS members (
		id         UUID PRIMARY KEY,
		owner_id   UUID NOT NULL REFERENCES admins(id),
		name       TEXT NOT NULL,
		code       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT members_code_key UNIQUE (code),
		CONSTRAINT members_owner_name_key UNIQUE (owner_id, name)
	)`,
	// The (owner_id, member_name, day) constraint is the atomic guard that
	// collapses concurrent duplicate check-ins into a single stored event.
	`CREATE TABLE IF NOT EXISTS attendance_events (
		id          UUID PRIMARY KEY,
		owner_id    UUID NOT NULL,
		member_name TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		day         DATE NOT NULL,
		UNIQUE (owner_id, member_name, day)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_owner_time ON attendance_events (owner_id, occurred_at)`,
}

// ensureSchema creates the tables and constraints the services rely on.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
