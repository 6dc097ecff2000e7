package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"todo-api/internal/domain"
)

// TaskRepository define el contrato de persistencia para tareas.
// Todas las operaciones sobre una tarea filtran por id y owner.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
	Update(ctx context.Context, ownerID, id string, patch domain.TaskPatch) error
	Delete(ctx context.Context, ownerID, id string) error
}

type PgTaskRepository struct {
	pool *pgxpool.Pool
}

func NewPgTaskRepository(pool *pgxpool.Pool) *PgTaskRepository {
	return &PgTaskRepository{pool: pool}
}

func (r *PgTaskRepository) Create(ctx context.Context, task domain.Task) error {
	const query = `
		INSERT INTO tasks (id, owner_id, title, description, priority, category, due_date, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Category),
		task.DueDate,
		task.Completed,
		task.CreatedAt,
	)
	return err
}

func (r *PgTaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	const query = `
		SELECT id, owner_id, title, description, priority, category, due_date, completed, created_at
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var (
			t        domain.Task
			priority string
			category string
		)
		err = rows.Scan(
			&t.ID,
			&t.OwnerID,
			&t.Title,
			&t.Description,
			&priority,
			&category,
			&t.DueDate,
			&t.Completed,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		t.Priority = domain.Priority(priority)
		t.Category = domain.Category(category)
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update aplica el patch; devuelve pgx.ErrNoRows si no hay tarea con ese id y owner.
func (r *PgTaskRepository) Update(ctx context.Context, ownerID, id string, patch domain.TaskPatch) error {
	query, args, err := buildTaskUpdate(ownerID, id, patch)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgTaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var errEmptyPatch = errors.New("empty task patch")

func buildTaskUpdate(ownerID, id string, patch domain.TaskPatch) (string, []interface{}, error) {
	if patch.Empty() {
		return "", nil, errEmptyPatch
	}

	args := []interface{}{id, ownerID}
	sets := make([]string, 0, 6)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Priority != nil {
		add("priority", string(*patch.Priority))
	}
	if patch.Category != nil {
		add("category", string(*patch.Category))
	}
	if patch.ClearDueDate {
		sets = append(sets, "due_date = NULL")
	} else if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = $1 AND owner_id = $2"
	return query, args, nil
}
