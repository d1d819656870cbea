package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskboard/internal/domain"
)

type rankRepo struct {
	q *querier
}

// FindByOwner retrieves the owner's ranking, or nil if none was saved
func (r *rankRepo) FindByOwner(ctx context.Context, owner uuid.UUID) (*domain.Ranking, error) {
	defer r.q.lock()()

	ranking := domain.Ranking{OwnerID: owner}
	err := r.q.tx.QueryRow(ctx, `
		SELECT task_ids, updated_at FROM task_rankings WHERE owner_id = $1`, owner,
	).Scan(&ranking.TaskIDs, &ranking.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}
	if ranking.TaskIDs == nil {
		ranking.TaskIDs = []int64{}
	}
	return &ranking, nil
}

// Persist writes the ranking, replacing the owner's previous one
func (r *rankRepo) Persist(ctx context.Context, ranking *domain.Ranking) (*domain.Ranking, error) {
	defer r.q.lock()()

	ids := ranking.TaskIDs
	if ids == nil {
		ids = []int64{}
	}

	err := r.q.tx.QueryRow(ctx, `
		INSERT INTO task_rankings (owner_id, task_ids, updated_at)
		VALUES ($1, $2, COALESCE($3, now()))
		ON CONFLICT (owner_id) DO UPDATE SET
			task_ids = EXCLUDED.task_ids,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at`,
		ranking.OwnerID, ids, nullableTime(ranking.UpdatedAt),
	).Scan(&ranking.UpdatedAt)
	if pgCode(err) == ForeignKeyViolation {
		return nil, domain.OwnerNotFound(ranking.OwnerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert ranking: %w", err)
	}
	return ranking, nil
}

// nullableTime maps the zero time to NULL so the column default applies
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
