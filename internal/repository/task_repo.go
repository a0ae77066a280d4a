package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskportal/internal/model"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

const taskColumns = `id, title, description, assigned_to, status, created_at`

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var status string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &status, &t.CreatedAt)
	t.Status = model.Status(status)
	return t, err
}

func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Get(ctx context.Context, id int) (model.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	return t, mapError(err)
}

// Create inserts t and fills in ID and CreatedAt.
func (r *TaskRepository) Create(ctx context.Context, t *model.Task) error {
	query := `
        INSERT INTO tasks (title, description, assigned_to, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, t.Title, t.Description, t.AssignedTo, string(t.Status)).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task", zap.String("title", t.Title), zap.Error(err))
		return mapError(err)
	}
	r.logger.Info("Task inserted", zap.Int("task_id", t.ID))
	return nil
}

// Update replaces title, description, assignee and status. CreatedAt is read
// back, never written.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `
        UPDATE tasks
        SET title = $1, description = $2, assigned_to = $3, status = $4
        WHERE id = $5
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query, t.Title, t.Description, t.AssignedTo, string(t.Status), t.ID).Scan(&t.CreatedAt)
	return mapError(err)
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
