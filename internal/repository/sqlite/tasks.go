package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"taskboard/internal/domain"
)

// taskRepo implements repository.TaskRepository inside a transaction
type taskRepo struct {
	q *querier
}

// FindByOwnerAndStates returns the owner's tasks in creation order
func (r *taskRepo) FindByOwnerAndStates(ctx context.Context, owner uuid.UUID, states []domain.State) ([]domain.Task, error) {
	tasks := []domain.Task{}
	if len(states) == 0 {
		return tasks, nil
	}

	args := make([]interface{}, 0, len(states)+1)
	args = append(args, owner)
	for _, s := range states {
		args = append(args, string(s))
	}

	defer r.q.lock()()

	rows, err := r.q.tx.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = ? AND state IN (`+placeholders(len(states))+`)
		ORDER BY id ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row taskRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		task, err := row.toDomain()
		if err != nil {
			return nil, err
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

	var row taskRow
	err := r.q.tx.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = ?
	`, id).Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}

	task, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Persist inserts a new task or updates an existing one
func (r *taskRepo) Persist(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	defer r.q.lock()()

	task.CreatedAt = timeOrNow(task.CreatedAt)
	task.UpdatedAt = timeOrNow(task.UpdatedAt)

	if task.ID == 0 {
		res, err := r.q.tx.ExecContext(ctx, `
			INSERT INTO tasks (owner_id, title, description, state, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, task.OwnerID, task.Title, task.Description, string(task.State), task.CreatedAt, task.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read task id: %w", err)
		}
		task.ID = id
		return task, nil
	}

	res, err := r.q.tx.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, state = ?, updated_at = ?
		WHERE id = ?
	`, task.Title, task.Description, string(task.State), task.UpdatedAt, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if n == 0 {
		return nil, domain.TaskNotFound(task.ID)
	}
	return task, nil
}
