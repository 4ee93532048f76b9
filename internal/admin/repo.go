package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rollcall/internal/store"
)

// Repository persists admin accounts in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, a Admin) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, email, password_hash, company_name)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.Username, a.Email, a.PasswordHash, a.CompanyName)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrExists
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*Admin, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, company_name, created_at
		FROM admins WHERE username = $1
	`, username)
	return scanAdmin(row)
}

func (r *Repository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*Admin, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, company_name, created_at
		FROM admins WHERE username = $1 OR email = $2
	`, username, email)
	return scanAdmin(row)
}

func scanAdmin(row *sql.Row) (*Admin, error) {
	var a Admin
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CompanyName, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
