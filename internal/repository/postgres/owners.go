package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskboard/internal/domain"
)

type ownerRepo struct {
	q *querier
}

func (r *ownerRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	defer r.q.lock()()

	var exists bool
	if err := r.q.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM owners WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check owner: %w", err)
	}
	return exists, nil
}

func (r *ownerRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	defer r.q.lock()()

	var owner domain.Owner
	err := r.q.tx.QueryRow(ctx, `SELECT id, name, created_at FROM owners WHERE id = $1`, id).
		Scan(&owner.ID, &owner.Name, &owner.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query owner: %w", err)
	}
	return &owner, nil
}

func (r *ownerRepo) List(ctx context.Context) ([]domain.Owner, error) {
	defer r.q.lock()()

	rows, err := r.q.tx.Query(ctx, `SELECT id, name, created_at FROM owners ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()

	owners := []domain.Owner{}
	for rows.Next() {
		var owner domain.Owner
		if err := rows.Scan(&owner.ID, &owner.Name, &owner.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owners: %w", err)
	}
	return owners, nil
}

func (r *ownerRepo) Persist(ctx context.Context, owner *domain.Owner) (*domain.Owner, error) {
	defer r.q.lock()()

	err := r.q.tx.QueryRow(ctx, `
		INSERT INTO owners (id, name, created_at)
		VALUES ($1, $2, COALESCE($3, now()))
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		RETURNING created_at`,
		owner.ID, owner.Name, nullableTime(owner.CreatedAt),
	).Scan(&owner.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert owner: %w", err)
	}
	return owner, nil
}
