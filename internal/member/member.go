package member

import (
	"context"
	"errors"
	"time"
)

// Member is a registered person who checks in with a code.
type Member struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrMissingFields = errors.New("name and user code are required")
	ErrCodeTaken     = errors.New("user code already exists")
	ErrNameTaken     = errors.New("member name already exists")
	ErrNotFound      = errors.New("user not found")
)

// Store is the persistence surface the service needs.
type Store interface {
	// Insert persists m and fills in store-assigned fields such as CreatedAt.
	Insert(ctx context.Context, m *Member) error
	Update(ctx context.Context, m Member) error
	Delete(ctx context.Context, ownerID, id string) error
	Get(ctx context.Context, ownerID, id string) (*Member, error)
	FindByCode(ctx context.Context, code string) (*Member, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Member, error)
}

// EventPurger removes attendance history when a member is deleted.
type EventPurger interface {
	DeleteByMember(ctx context.Context, ownerID, name string) error
}
