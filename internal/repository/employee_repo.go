package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskportal/internal/model"
)

type EmployeeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewEmployeeRepository(db *pgxpool.Pool, logger *zap.Logger) *EmployeeRepository {
	return &EmployeeRepository{db: db, logger: logger}
}

const employeeColumns = `id, name, email, role, password_hash`

func scanEmployee(row pgx.Row) (model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.PasswordHash)
	return e, err
}

func (r *EmployeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	rows, err := r.db.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		r.logger.Error("Failed to query employees", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	employees := []model.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) Get(ctx context.Context, id int) (model.Employee, error) {
	e, err := scanEmployee(r.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	return e, mapError(err)
}

func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (model.Employee, error) {
	e, err := scanEmployee(r.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE LOWER(email) = LOWER($1)`, email))
	return e, mapError(err)
}

// Create inserts e and sets its ID.
func (r *EmployeeRepository) Create(ctx context.Context, e *model.Employee) error {
	query := `
        INSERT INTO employees (name, email, role, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	if err := r.db.QueryRow(ctx, query, e.Name, e.Email, e.Role, e.PasswordHash).Scan(&e.ID); err != nil {
		r.logger.Warn("Failed to insert employee", zap.String("email", e.Email), zap.Error(err))
		return mapError(err)
	}
	r.logger.Info("Employee inserted", zap.Int("employee_id", e.ID))
	return nil
}

func (r *EmployeeRepository) Update(ctx context.Context, e *model.Employee) error {
	query := `
        UPDATE employees
        SET name = $1, email = $2, role = $3, password_hash = $4
        WHERE id = $5
    `
	tag, err := r.db.Exec(ctx, query, e.Name, e.Email, e.Role, e.PasswordHash, e.ID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the employee and every task assigned to them in one
// transaction, returning the number of tasks removed.
func (r *EmployeeRepository) Delete(ctx context.Context, id int) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tasksTag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE assigned_to = $1`, id)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	removed := int(tasksTag.RowsAffected())
	r.logger.Info("Employee deleted",
		zap.Int("employee_id", id),
		zap.Int("tasks_removed", removed),
	)
	return removed, nil
}

func (r *EmployeeRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
