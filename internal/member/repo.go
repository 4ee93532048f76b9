package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rollcall/internal/store"
)

// Repository persists members in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Constraint names from the members table; violations are mapped onto
// domain errors by name because the table carries two unique indexes.
const (
	codeConstraint      = "members_code_key"
	ownerNameConstraint = "members_owner_name_key"
)

func uniqueTakenErr(err error) error {
	switch store.UniqueConstraint(err) {
	case codeConstraint:
		return ErrCodeTaken
	case ownerNameConstraint:
		return ErrNameTaken
	}
	return nil
}

func (r *Repository) Insert(ctx context.Context, m *Member) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO members (id, owner_id, name, code)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, m.ID, m.OwnerID, m.Name, m.Code).Scan(&m.CreatedAt)
	if err != nil {
		if taken := uniqueTakenErr(err); taken != nil {
			return taken
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, m Member) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE members SET name = $3, code = $4
		WHERE owner_id = $1 AND id = $2
	`, m.OwnerID, m.ID, m.Name, m.Code)
	if err != nil {
		if taken := uniqueTakenErr(err); taken != nil {
			return taken
		}
		return fmt.Errorf("update member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, ownerID, id string) (*Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, code, created_at
		FROM members WHERE owner_id = $1 AND id = $2
	`, ownerID, id)
	return scanMember(row)
}

func (r *Repository) FindByCode(ctx context.Context, code string) (*Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, code, created_at
		FROM members WHERE code = $1
	`, code)
	return scanMember(row)
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, name, code, created_at
		FROM members WHERE owner_id = $1
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Code, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanMember(row *sql.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Code, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
