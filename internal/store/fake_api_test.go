package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"taskportal/internal/model"
)

// fakeAPI is an in-memory stand-in for the REST API. Setting fail makes every
// call return that error; hooks run before the reply when set.
type fakeAPI struct {
	mu        sync.Mutex
	employees []model.Employee
	tasks     []model.Task
	nextID    int
	fail      error
	hook      func(ctx context.Context, op string)
	calls     []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 100}
}

func (f *fakeAPI) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	hook := f.hook
	fail := f.fail
	f.mu.Unlock()
	if hook != nil {
		hook(ctx, op)
	}
	return fail
}

func (f *fakeAPI) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	if err := f.enter(ctx, "list_employees"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Employee(nil), f.employees...), nil
}

func (f *fakeAPI) CreateEmployee(ctx context.Context, in model.EmployeeInput) (model.Employee, error) {
	if err := f.enter(ctx, "create_employee"); err != nil {
		return model.Employee{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e := model.Employee{ID: f.nextID, Name: in.Name, Email: in.Email, Role: in.Role}
	f.employees = append(f.employees, e)
	return e, nil
}

func (f *fakeAPI) UpdateEmployee(ctx context.Context, id int, in model.EmployeeInput) (model.Employee, error) {
	if err := f.enter(ctx, "update_employee"); err != nil {
		return model.Employee{}, err
	}
	return model.Employee{ID: id, Name: in.Name, Email: in.Email, Role: in.Role}, nil
}

func (f *fakeAPI) DeleteEmployee(ctx context.Context, id int) (int, error) {
	if err := f.enter(ctx, "delete_employee"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employees = removeWhere(f.employees, func(e model.Employee) bool { return e.ID == id })
	f.tasks = removeWhere(f.tasks, func(t model.Task) bool { return t.IsAssignedTo(id) })
	return id, nil
}

func (f *fakeAPI) ListTasks(ctx context.Context) ([]model.Task, error) {
	if err := f.enter(ctx, "list_tasks"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Task(nil), f.tasks...), nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if err := f.enter(ctx, "create_task"); err != nil {
		return model.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := model.Task{
		ID: f.nextID, Title: in.Title, Description: in.Description,
		AssignedTo: in.AssignedTo, Status: in.Status, CreatedAt: time.Now(),
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id int, in model.TaskInput) (model.Task, error) {
	if err := f.enter(ctx, "update_task"); err != nil {
		return model.Task{}, err
	}
	return model.Task{
		ID: id, Title: in.Title, Description: in.Description,
		AssignedTo: in.AssignedTo, Status: in.Status,
	}, nil
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id int) (int, error) {
	if err := f.enter(ctx, "delete_task"); err != nil {
		return 0, err
	}
	return id, nil
}

var errBoom = errors.New("Failed to fetch tasks")

func intPtr(v int) *int { return &v }
