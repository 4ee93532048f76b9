package admin

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service handles organization account registration and login.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register creates an organization account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, email, password, companyName string) (Admin, error) {
	if username == "" || email == "" || password == "" || companyName == "" {
		return Admin{}, ErrMissingFields
	}
	existing, err := s.store.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return Admin{}, err
	}
	if existing != nil {
		return Admin{}, ErrExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Admin{}, err
	}
	a := Admin{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		CompanyName:  companyName,
		PasswordHash: string(hash),
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return Admin{}, err
	}
	return a, nil
}

// Login verifies credentials and returns the account.
func (s *Service) Login(ctx context.Context, username, password string) (Admin, error) {
	if username == "" || password == "" {
		return Admin{}, ErrMissingFields
	}
	a, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return Admin{}, err
	}
	if a == nil {
		return Admin{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return Admin{}, ErrInvalidCredentials
	}
	return *a, nil
}
