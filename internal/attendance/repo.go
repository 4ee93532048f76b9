package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rollcall/internal/store"
)

// Repository persists attendance events in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one event. The day column carries the event's local calendar
// date; the unique index on (owner_id, member_name, day) makes concurrent
// duplicate check-ins collapse into one stored row and one ErrAlreadyMarked.
func (r *Repository) Insert(ctx context.Context, evt Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_events (id, owner_id, member_name, occurred_at, day)
		VALUES ($1, $2, $3, $4, $5)
	`, evt.ID, evt.OwnerID, evt.MemberName, evt.OccurredAt, dayKey(evt.OccurredAt))
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrAlreadyMarked
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Get returns a single event by id; nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, member_name, occurred_at
		FROM attendance_events WHERE id = $1
	`, id)
	var evt Event
	if err := row.Scan(&evt.ID, &evt.OwnerID, &evt.MemberName, &evt.OccurredAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &evt, nil
}

// LatestByMember returns each member's most recent check-in inside [from, to].
func (r *Repository) LatestByMember(ctx context.Context, ownerID string, from, to time.Time) (map[string]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT member_name, MAX(occurred_at)
		FROM attendance_events
		WHERE owner_id = $1 AND occurred_at BETWEEN $2 AND $3
		GROUP BY member_name
	`, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("latest by member: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]time.Time)
	for rows.Next() {
		var name string
		var ts time.Time
		if err := rows.Scan(&name, &ts); err != nil {
			return nil, err
		}
		latest[name] = ts
	}
	return latest, rows.Err()
}

// ListByOwner returns the owner's events inside [from, to], oldest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string, from, to time.Time) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, member_name, occurred_at
		FROM attendance_events
		WHERE owner_id = $1 AND occurred_at BETWEEN $2 AND $3
		ORDER BY occurred_at ASC
	`, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.OwnerID, &evt.MemberName, &evt.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

// DeleteByMember removes all events for (owner, name); called when the
// member directory deletes the member.
func (r *Repository) DeleteByMember(ctx context.Context, ownerID, name string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM attendance_events WHERE owner_id = $1 AND member_name = $2
	`, ownerID, name)
	if err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	return nil
}
