package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"taskportal/internal/model"
)

// MemoryStore keeps employees and tasks in process. It mirrors the Postgres
// repositories, including the email uniqueness and the delete cascade, and
// backs the "memory" storage driver and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	employees  []model.Employee
	tasks      []model.Task
	activity   []model.Activity
	nextEmpID  int
	nextTaskID int
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextEmpID: 1, nextTaskID: 1, now: time.Now}
}

func (m *MemoryStore) Employees() *MemoryEmployeeRepository {
	return &MemoryEmployeeRepository{m: m}
}

func (m *MemoryStore) Tasks() *MemoryTaskRepository {
	return &MemoryTaskRepository{m: m}
}

func (m *MemoryStore) Activity() *MemoryActivityRepository {
	return &MemoryActivityRepository{m: m}
}

type MemoryEmployeeRepository struct{ m *MemoryStore }

func (r *MemoryEmployeeRepository) List(context.Context) ([]model.Employee, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return slices.Clone(r.m.employees), nil
}

func (r *MemoryEmployeeRepository) Get(_ context.Context, id int) (model.Employee, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, e := range r.m.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Employee{}, ErrNotFound
}

func (r *MemoryEmployeeRepository) GetByEmail(_ context.Context, email string) (model.Employee, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, e := range r.m.employees {
		if strings.EqualFold(e.Email, email) {
			return e, nil
		}
	}
	return model.Employee{}, ErrNotFound
}

func (r *MemoryEmployeeRepository) emailTaken(email string, except int) bool {
	for _, e := range r.m.employees {
		if e.ID != except && strings.EqualFold(e.Email, email) {
			return true
		}
	}
	return false
}

func (r *MemoryEmployeeRepository) Create(_ context.Context, e *model.Employee) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.emailTaken(e.Email, 0) {
		return ErrDuplicateEmail
	}
	e.ID = r.m.nextEmpID
	r.m.nextEmpID++
	r.m.employees = append(r.m.employees, *e)
	return nil
}

func (r *MemoryEmployeeRepository) Update(_ context.Context, e *model.Employee) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i := slices.IndexFunc(r.m.employees, func(x model.Employee) bool { return x.ID == e.ID })
	if i < 0 {
		return ErrNotFound
	}
	if r.emailTaken(e.Email, e.ID) {
		return ErrDuplicateEmail
	}
	r.m.employees[i] = *e
	return nil
}

func (r *MemoryEmployeeRepository) Delete(_ context.Context, id int) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i := slices.IndexFunc(r.m.employees, func(x model.Employee) bool { return x.ID == id })
	if i < 0 {
		return 0, ErrNotFound
	}
	r.m.employees = slices.Delete(r.m.employees, i, i+1)

	before := len(r.m.tasks)
	r.m.tasks = slices.DeleteFunc(r.m.tasks, func(t model.Task) bool { return t.IsAssignedTo(id) })
	return before - len(r.m.tasks), nil
}

func (r *MemoryEmployeeRepository) Ping(context.Context) error {
	return nil
}

type MemoryTaskRepository struct{ m *MemoryStore }

func copyTask(t model.Task) model.Task {
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		t.AssignedTo = &v
	}
	return t
}

func (r *MemoryTaskRepository) List(context.Context) ([]model.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]model.Task, 0, len(r.m.tasks))
	for _, t := range r.m.tasks {
		out = append(out, copyTask(t))
	}
	return out, nil
}

func (r *MemoryTaskRepository) Get(_ context.Context, id int) (model.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, t := range r.m.tasks {
		if t.ID == id {
			return copyTask(t), nil
		}
	}
	return model.Task{}, ErrNotFound
}

func (r *MemoryTaskRepository) Create(_ context.Context, t *model.Task) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t.ID = r.m.nextTaskID
	r.m.nextTaskID++
	t.CreatedAt = r.m.now().UTC()
	r.m.tasks = append(r.m.tasks, copyTask(*t))
	return nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, t *model.Task) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i := slices.IndexFunc(r.m.tasks, func(x model.Task) bool { return x.ID == t.ID })
	if i < 0 {
		return ErrNotFound
	}
	t.CreatedAt = r.m.tasks[i].CreatedAt
	r.m.tasks[i] = copyTask(*t)
	return nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i := slices.IndexFunc(r.m.tasks, func(x model.Task) bool { return x.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	r.m.tasks = slices.Delete(r.m.tasks, i, i+1)
	return nil
}

type MemoryActivityRepository struct{ m *MemoryStore }

func (r *MemoryActivityRepository) Insert(_ context.Context, a *model.Activity) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if slices.ContainsFunc(r.m.activity, func(x model.Activity) bool { return x.EventID == a.EventID }) {
		return false, nil
	}
	a.ID = len(r.m.activity) + 1
	r.m.activity = append(r.m.activity, *a)
	return true, nil
}

func (r *MemoryActivityRepository) ListRecent(_ context.Context, limit int) ([]model.Activity, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := []model.Activity{}
	for i := len(r.m.activity) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.m.activity[i])
	}
	return out, nil
}
