package repository

import (
	"context"

	"github.com/google/uuid"

	"taskboard/internal/domain"
)

// TaskRepository persists and queries tasks by owner and state
type TaskRepository interface {
	// FindByOwnerAndStates returns the owner's tasks in any of states,
	// ordered by ascending id (creation order).
	FindByOwnerAndStates(ctx context.Context, owner uuid.UUID, states []domain.State) ([]domain.Task, error)
	// FindByID returns nil, nil when the task does not exist
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	// Persist inserts a task with a zero ID and updates any other
	Persist(ctx context.Context, task *domain.Task) (*domain.Task, error)
}

// RankRepository persists one ranking per owner
type RankRepository interface {
	// FindByOwner returns nil, nil when the owner has never saved a ranking
	FindByOwner(ctx context.Context, owner uuid.UUID) (*domain.Ranking, error)
	// Persist writes the ranking, replacing any previous one for the owner
	Persist(ctx context.Context, ranking *domain.Ranking) (*domain.Ranking, error)
}

// OwnerDirectory resolves owner references
type OwnerDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// FindByID returns nil, nil when the owner does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error)
	// List returns all owners sorted by name
	List(ctx context.Context) ([]domain.Owner, error)
	Persist(ctx context.Context, owner *domain.Owner) (*domain.Owner, error)
}

// Repos bundles repositories bound to one transaction.
// Implementations must tolerate concurrent calls from multiple goroutines.
type Repos struct {
	Tasks    TaskRepository
	Rankings RankRepository
	Owners   OwnerDirectory
}

// TxFunc runs inside a transaction. Returning an error rolls it back.
type TxFunc func(ctx context.Context, repos Repos) error

// Store is the transaction boundary over all repositories
type Store interface {
	// WithinTx commits when fn returns nil and rolls back otherwise
	WithinTx(ctx context.Context, fn TxFunc) error

	// Close releases resources
	Close() error
}
