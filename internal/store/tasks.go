package store

import (
	"context"

	"go.uber.org/zap"

	"taskportal/internal/model"
)

// TaskAPI is the remote side of TaskStore.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id int, in model.TaskInput) (model.Task, error)
	DeleteTask(ctx context.Context, id int) (int, error)
}

type TaskStore struct {
	*collection[model.Task]
	api TaskAPI
}

func NewTaskStore(api TaskAPI, logger *zap.Logger) *TaskStore {
	return &TaskStore{
		collection: newCollection("tasks", taskID, cloneTask, logger),
		api:        api,
	}
}

func taskID(t model.Task) int { return t.ID }

func cloneTask(t model.Task) model.Task {
	if t.AssignedTo != nil {
		id := *t.AssignedTo
		t.AssignedTo = &id
	}
	return t
}

func (s *TaskStore) Tasks() []model.Task {
	return s.snapshot()
}

func (s *TaskStore) Get(id int) (model.Task, bool) {
	return s.find(id)
}

// TasksForEmployee filters the cache by assignee, keeping cache order. A nil
// id matches nothing.
func (s *TaskStore) TasksForEmployee(employeeID *int) []model.Task {
	out := []model.Task{}
	if employeeID == nil {
		return out
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.items {
		if t.IsAssignedTo(*employeeID) {
			out = append(out, cloneTask(t))
		}
	}
	return out
}

// RemoveTasksByEmployee purges cached tasks assigned to employeeID without
// contacting the server and returns how many were dropped.
func (s *TaskStore) RemoveTasksByEmployee(employeeID int) int {
	removed := 0
	s.mutate(OpRemoveByEmployee, func(items []model.Task) []model.Task {
		kept := removeWhere(items, func(t model.Task) bool { return t.IsAssignedTo(employeeID) })
		removed = len(items) - len(kept)
		return kept
	})
	return removed
}

func (s *TaskStore) FetchAll(ctx context.Context) ([]model.Task, error) {
	return run(ctx, s.collection, OpFetchAll, s.api.ListTasks, func(_ []model.Task, got []model.Task) []model.Task {
		out := make([]model.Task, 0, len(got))
		for _, t := range got {
			out = append(out, cloneTask(t))
		}
		return out
	})
}

func (s *TaskStore) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	call := func(ctx context.Context) (model.Task, error) { return s.api.CreateTask(ctx, in) }
	return run(ctx, s.collection, OpCreate, call, func(items []model.Task, t model.Task) []model.Task {
		return append(items, cloneTask(t))
	})
}

// Update sends a full replace of the task's fields. No transition guard is
// applied here; see portal.AdvanceTask for the employee path.
func (s *TaskStore) Update(ctx context.Context, id int, in model.TaskInput) (model.Task, error) {
	call := func(ctx context.Context) (model.Task, error) { return s.api.UpdateTask(ctx, id, in) }
	return run(ctx, s.collection, OpUpdate, call, func(items []model.Task, t model.Task) []model.Task {
		return replaceByID(items, cloneTask(t), taskID)
	})
}

func (s *TaskStore) Delete(ctx context.Context, id int) (int, error) {
	call := func(ctx context.Context) (int, error) { return s.api.DeleteTask(ctx, id) }
	return run(ctx, s.collection, OpDelete, call, func(items []model.Task, deleted int) []model.Task {
		return removeWhere(items, func(t model.Task) bool { return t.ID == deleted })
	})
}
