package member

import (
	"context"

	"github.com/google/uuid"
)

// Service owns member records: the check-in and reporting services only ever
// read them through the Store.
type Service struct {
	store  Store
	events EventPurger
}

// NewService creates a service backed by a store and an event purger.
func NewService(store Store, events EventPurger) *Service {
	return &Service{store: store, events: events}
}

// Create registers a member under the owner. Codes are unique across all
// owners so the ownerless check-in endpoint can resolve them unambiguously.
func (s *Service) Create(ctx context.Context, ownerID, name, code string) (Member, error) {
	if name == "" || code == "" {
		return Member{}, ErrMissingFields
	}
	existing, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return Member{}, err
	}
	if existing != nil {
		return Member{}, ErrCodeTaken
	}

	m := Member{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
		Code:    code,
	}
	if err := s.store.Insert(ctx, &m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// List returns all members owned by ownerID.
func (s *Service) List(ctx context.Context, ownerID string) ([]Member, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// Resolve looks a member up by code; nil when the code matches nobody.
func (s *Service) Resolve(ctx context.Context, code string) (*Member, error) {
	if code == "" {
		return nil, ErrMissingFields
	}
	return s.store.FindByCode(ctx, code)
}

// Update changes name and/or code, leaving blank fields untouched.
func (s *Service) Update(ctx context.Context, ownerID, id, name, code string) (Member, error) {
	m, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return Member{}, err
	}
	if m == nil {
		return Member{}, ErrNotFound
	}
	if name != "" {
		m.Name = name
	}
	if code != "" && code != m.Code {
		existing, err := s.store.FindByCode(ctx, code)
		if err != nil {
			return Member{}, err
		}
		if existing != nil {
			return Member{}, ErrCodeTaken
		}
		m.Code = code
	}
	if err := s.store.Update(ctx, *m); err != nil {
		return Member{}, err
	}
	return *m, nil
}

// Delete removes the member and cascades to their attendance events, which
// are keyed by (owner, name) rather than a member reference.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	m, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNotFound
	}
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	return s.events.DeleteByMember(ctx, ownerID, m.Name)
}
