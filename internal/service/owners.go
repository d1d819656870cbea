package service

import (
	"context"

	"github.com/google/uuid"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

// OwnerService manages the owner directory
type OwnerService struct {
	store    repository.Store
	eventBus *EventBus
}

// NewOwnerService creates a new owner service
func NewOwnerService(store repository.Store, eventBus *EventBus) *OwnerService {
	return &OwnerService{
		store:    store,
		eventBus: eventBus,
	}
}

// CreateOwner registers an owner under a fresh id
func (s *OwnerService) CreateOwner(ctx context.Context, name string) (*domain.Owner, error) {
	owner, err := domain.NewOwner(name)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		owner, err = repos.Owners.Persist(ctx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventOwnerCreated,
		Owner:   owner.ID,
		Payload: map[string]string{"name": owner.Name},
	})

	return owner, nil
}

// ListOwners returns all owners sorted by name
func (s *OwnerService) ListOwners(ctx context.Context) ([]domain.Owner, error) {
	var owners []domain.Owner
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		owners, err = repos.Owners.List(ctx)
		return err
	})
	return owners, err
}

// GetOwner retrieves a single owner by ID
func (s *OwnerService) GetOwner(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	var owner *domain.Owner
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		owner, err = repos.Owners.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, domain.OwnerNotFound(id)
	}
	return owner, nil
}
