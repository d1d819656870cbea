package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskboard/internal/domain"
)

const taskColumns = `id, owner_id, title, COALESCE(description, ''), state, created_at, updated_at`

type taskRepo struct {
	q *querier
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var (
		task  domain.Task
		state string
	)
	if err := row.Scan(&task.ID, &task.OwnerID, &task.Title, &task.Description, &state, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return domain.Task{}, err
	}
	task.State = domain.State(state)
	if !task.State.IsValid() {
		return domain.Task{}, fmt.Errorf("task %d has unknown state %q", task.ID, state)
	}
	return task, nil
}

// FindByOwnerAndStates returns the owner's tasks in creation order
func (r *taskRepo) FindByOwnerAndStates(ctx context.Context, owner uuid.UUID, states []domain.State) ([]domain.Task, error) {
	tasks := []domain.Task{}
	if len(states) == 0 {
		return tasks, nil
	}

	tokens := make([]string, len(states))
	for i, s := range states {
		tokens[i] = string(s)
	}

	defer r.q.lock()()

	rows, err := r.q.tx.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = $1 AND state = ANY($2)
		ORDER BY id ASC`, owner, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// FindByID retrieves a single task by ID
func (r *taskRepo) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	defer r.q.lock()()

	task, err := scanTask(r.q.tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return &task, nil
}

// Persist inserts a new task or updates an existing one
func (r *taskRepo) Persist(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	defer r.q.lock()()

	if task.ID == 0 {
		err := r.q.tx.QueryRow(ctx, `
			INSERT INTO tasks (owner_id, title, description, state, created_at, updated_at)
			VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
			RETURNING id, created_at, updated_at`,
			task.OwnerID, task.Title, task.Description, string(task.State),
			nullableTime(task.CreatedAt), nullableTime(task.UpdatedAt),
		).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
		if pgCode(err) == ForeignKeyViolation {
			return nil, domain.OwnerNotFound(task.OwnerID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to insert task: %w", err)
		}
		return task, nil
	}

	tag, err := r.q.tx.Exec(ctx, `
		UPDATE tasks SET title = $1, description = $2, state = $3, updated_at = COALESCE($4, now())
		WHERE id = $5`,
		task.Title, task.Description, string(task.State), nullableTime(task.UpdatedAt), task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.TaskNotFound(task.ID)
	}
	return task, nil
}
