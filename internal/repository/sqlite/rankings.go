package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"taskboard/internal/domain"
)

// rankRepo implements repository.RankRepository inside a transaction
type rankRepo struct {
	q *querier
}

// FindByOwner retrieves the owner's ranking, or nil if none was saved
func (r *rankRepo) FindByOwner(ctx context.Context, owner uuid.UUID) (*domain.Ranking, error) {
	defer r.q.lock()()

	var row rankingRow
	err := r.q.tx.QueryRowContext(ctx, `
		SELECT `+rankingColumns+` FROM task_rankings WHERE owner_id = ?
	`, owner).Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}

	return row.toDomain()
}

// Persist writes the ranking, replacing the owner's previous one
func (r *rankRepo) Persist(ctx context.Context, ranking *domain.Ranking) (*domain.Ranking, error) {
	defer r.q.lock()()

	ids, err := marshalIDs(ranking.TaskIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal task ids: %w", err)
	}
	ranking.UpdatedAt = timeOrNow(ranking.UpdatedAt)

	_, err = r.q.tx.ExecContext(ctx, `
		INSERT INTO task_rankings (owner_id, task_ids, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			task_ids = excluded.task_ids,
			updated_at = excluded.updated_at
	`, ranking.OwnerID, ids, ranking.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert ranking: %w", err)
	}

	return ranking, nil
}
