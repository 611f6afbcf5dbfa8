package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-manager/internal/domain"
)

// TaskUpdate son los campos mutables de una tarea. Completed nil conserva el valor actual.
type TaskUpdate struct {
	Title       string
	Description string
	Completed   *bool
}

// TaskRepository define el contrato de persistencia para tareas.
// Toda lectura o escritura filtra por dueño.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	GetByOwner(ctx context.Context, id, ownerID string) (domain.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
	Update(ctx context.Context, id, ownerID string, upd TaskUpdate) (domain.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type PgTaskRepository struct {
	db pgxQuerier
}

func NewPgTaskRepository(pool *pgxpool.Pool) *PgTaskRepository {
	return newPgTaskRepository(pool)
}

func newPgTaskRepository(db pgxQuerier) *PgTaskRepository {
	return &PgTaskRepository{db: db}
}

const taskColumns = `id::text, user_id::text, title, description, completed, created_at, updated_at`

func (r *PgTaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	const query = `
		INSERT INTO tasks (user_id, title, description, completed)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + taskColumns

	return scanTask(r.db.QueryRow(ctx, query,
		task.UserID,
		task.Title,
		task.Description,
		task.Completed,
	))
}

func (r *PgTaskRepository) GetByOwner(ctx context.Context, id, ownerID string) (domain.Task, error) {
	const query = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`
	return scanTask(r.db.QueryRow(ctx, query, id, ownerID))
}

func (r *PgTaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	const query = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *PgTaskRepository) Update(ctx context.Context, id, ownerID string, upd TaskUpdate) (domain.Task, error) {
	const query = `
		UPDATE tasks
		SET title = $3,
		    description = $4,
		    completed = COALESCE($5, completed),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns

	return scanTask(r.db.QueryRow(ctx, query,
		id,
		ownerID,
		upd.Title,
		upd.Description,
		upd.Completed,
	))
}

func (r *PgTaskRepository) Delete(ctx context.Context, id, ownerID string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Task{}, ErrNotFound
	}
	if err != nil {
		return domain.Task{}, err
	}
	return task, nil
}
