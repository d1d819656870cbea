package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/internal/repository"
)

const (
	ForeignKeyViolation = "23503"
	UniqueViolation     = "23505"
)

// Storage implements repository.Store using PostgreSQL
type Storage struct {
	db *pgxpool.Pool
}

var _ repository.Store = (*Storage)(nil)

// New connects to PostgreSQL and migrates the schema
func New(ctx context.Context, connString string) (*Storage, error) {
	db, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Storage) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS owners (
			id UUID PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id BIGSERIAL PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
			title VARCHAR(128) NOT NULL,
			description VARCHAR(2048),
			state TEXT NOT NULL DEFAULT 'open',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS task_rankings (
			owner_id UUID PRIMARY KEY REFERENCES owners(id) ON DELETE CASCADE,
			task_ids BIGINT[] NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_owner_state ON tasks(owner_id, state, id)`,
		`CREATE INDEX IF NOT EXISTS idx_owners_name ON owners(name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// WithinTx runs fn inside one transaction
func (s *Storage) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := &querier{tx: tx}
	repos := repository.Repos{
		Tasks:    &taskRepo{q: q},
		Rankings: &rankRepo{q: q},
		Owners:   &ownerRepo{q: q},
	}

	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping checks the database is reachable
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the pool
func (s *Storage) Close() error {
	s.db.Close()
	return nil
}

// querier serializes use of a transaction. A pgx connection cannot run a
// second query while rows from the first are still open.
type querier struct {
	mu sync.Mutex
	tx pgx.Tx
}

func (q *querier) lock() func() {
	q.mu.Lock()
	return q.mu.Unlock
}

// pgCode returns the SQLSTATE of a PostgreSQL error, or ""
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
