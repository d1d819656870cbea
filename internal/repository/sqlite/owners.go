package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"taskboard/internal/domain"
)

// ownerRepo implements repository.OwnerDirectory inside a transaction
type ownerRepo struct {
	q *querier
}

// Exists reports whether an owner with the id is registered
func (r *ownerRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	defer r.q.lock()()

	var exists bool
	err := r.q.tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM owners WHERE id = ?)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check owner: %w", err)
	}
	return exists, nil
}

// FindByID retrieves a single owner by ID
func (r *ownerRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	defer r.q.lock()()

	var row ownerRow
	err := r.q.tx.QueryRowContext(ctx, `
		SELECT `+ownerColumns+` FROM owners WHERE id = ?
	`, id).Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query owner: %w", err)
	}

	owner := row.toDomain()
	return &owner, nil
}

// List returns all owners sorted by name
func (r *ownerRepo) List(ctx context.Context) ([]domain.Owner, error) {
	defer r.q.lock()()

	rows, err := r.q.tx.QueryContext(ctx, `
		SELECT `+ownerColumns+` FROM owners ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()

	owners := []domain.Owner{}
	for rows.Next() {
		var row ownerRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owners: %w", err)
	}

	return owners, nil
}

// Persist inserts or renames an owner
func (r *ownerRepo) Persist(ctx context.Context, owner *domain.Owner) (*domain.Owner, error) {
	defer r.q.lock()()

	owner.CreatedAt = timeOrNow(owner.CreatedAt)

	_, err := r.q.tx.ExecContext(ctx, `
		INSERT INTO owners (id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, owner.ID, owner.Name, owner.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert owner: %w", err)
	}

	return owner, nil
}
