package store

import (
	"context"

	"go.uber.org/zap"

	"taskportal/internal/model"
)

// EmployeeAPI is the remote side of EmployeeStore; *apiclient.Client
// satisfies it.
type EmployeeAPI interface {
	ListEmployees(ctx context.Context) ([]model.Employee, error)
	CreateEmployee(ctx context.Context, in model.EmployeeInput) (model.Employee, error)
	UpdateEmployee(ctx context.Context, id int, in model.EmployeeInput) (model.Employee, error)
	DeleteEmployee(ctx context.Context, id int) (int, error)
}

type EmployeeStore struct {
	*collection[model.Employee]
	api EmployeeAPI
}

func NewEmployeeStore(api EmployeeAPI, logger *zap.Logger) *EmployeeStore {
	return &EmployeeStore{
		collection: newCollection("employees", employeeID, nil, logger),
		api:        api,
	}
}

func employeeID(e model.Employee) int { return e.ID }

// Employees returns a copy of the cached roster in cache order.
func (s *EmployeeStore) Employees() []model.Employee {
	return s.snapshot()
}

func (s *EmployeeStore) Get(id int) (model.Employee, bool) {
	return s.find(id)
}

// FetchAll replaces the cache with the server's roster.
func (s *EmployeeStore) FetchAll(ctx context.Context) ([]model.Employee, error) {
	return run(ctx, s.collection, OpFetchAll, s.api.ListEmployees, func(_ []model.Employee, got []model.Employee) []model.Employee {
		if got == nil {
			return []model.Employee{}
		}
		return append([]model.Employee(nil), got...)
	})
}

// Create appends the employee returned by the server, carrying its
// server-assigned id.
func (s *EmployeeStore) Create(ctx context.Context, in model.EmployeeInput) (model.Employee, error) {
	call := func(ctx context.Context) (model.Employee, error) { return s.api.CreateEmployee(ctx, in) }
	return run(ctx, s.collection, OpCreate, call, appendItem[model.Employee])
}

// Update replaces the cached employee with the server's response. If the
// employee is no longer cached the response is dropped.
func (s *EmployeeStore) Update(ctx context.Context, id int, in model.EmployeeInput) (model.Employee, error) {
	call := func(ctx context.Context) (model.Employee, error) { return s.api.UpdateEmployee(ctx, id, in) }
	return run(ctx, s.collection, OpUpdate, call, func(items []model.Employee, e model.Employee) []model.Employee {
		return replaceByID(items, e, employeeID)
	})
}

// Delete removes the employee from the cache. The server cascades to the
// employee's tasks; callers refresh the task store afterwards.
func (s *EmployeeStore) Delete(ctx context.Context, id int) (int, error) {
	call := func(ctx context.Context) (int, error) { return s.api.DeleteEmployee(ctx, id) }
	return run(ctx, s.collection, OpDelete, call, func(items []model.Employee, deleted int) []model.Employee {
		return removeWhere(items, func(e model.Employee) bool { return e.ID == deleted })
	})
}
