package admin

import (
	"context"
	"errors"
	"time"
)

// Admin is an organization account; its id scopes members and events.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	CompanyName  string    `json:"company_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrExists             = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, a Admin) error
	FindByUsername(ctx context.Context, username string) (*Admin, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*Admin, error)
}
