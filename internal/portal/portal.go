// Package portal exposes the user intents of the admin and employee
// dashboards on top of the session and the entity stores.
package portal

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taskportal/internal/model"
	"taskportal/internal/session"
	"taskportal/internal/store"
	"taskportal/internal/workflow"
	"taskportal/pkg/logger"
	"taskportal/pkg/rbac"
)

var (
	ErrNotAuthenticated = errors.New("not logged in")
	ErrTaskNotFound     = errors.New("task not found")
	ErrNotAssigned      = errors.New("task is not assigned to you")
)

// API is everything the portal needs from the remote side.
type API interface {
	session.Authenticator
	store.EmployeeAPI
	store.TaskAPI
}

type Portal struct {
	Session   *session.Session
	Employees *store.EmployeeStore
	Tasks     *store.TaskStore
	logger    *zap.Logger
}

func New(api API, logger *zap.Logger) *Portal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Portal{
		Session:   session.New(api, logger.Named("session")),
		Employees: store.NewEmployeeStore(api, logger.Named("store")),
		Tasks:     store.NewTaskStore(api, logger.Named("store")),
		logger:    logger,
	}
}

func (p *Portal) Login(ctx context.Context, creds model.Credentials) (model.Identity, error) {
	return p.Session.Login(ctx, creds)
}

func (p *Portal) Logout() {
	p.Session.Logout()
}

func (p *Portal) authorize(permission string) (model.Identity, error) {
	id, ok := p.Session.Identity()
	if !ok {
		return model.Identity{}, ErrNotAuthenticated
	}
	if err := rbac.CheckPermission(id.Role, permission); err != nil {
		return model.Identity{}, err
	}
	return id, nil
}

// LoadAdminDashboard fetches the roster and the task list concurrently.
func (p *Portal) LoadAdminDashboard(ctx context.Context) error {
	if _, err := p.authorize(rbac.PermissionReadEmployee); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := p.Employees.FetchAll(gctx)
		return err
	})
	g.Go(func() error {
		_, err := p.Tasks.FetchAll(gctx)
		return err
	})
	return g.Wait()
}

func (p *Portal) LoadEmployeeDashboard(ctx context.Context) error {
	if _, err := p.authorize(rbac.PermissionReadTask); err != nil {
		return err
	}
	_, err := p.Tasks.FetchAll(ctx)
	return err
}

// MyTasks returns the cached tasks assigned to the logged-in employee.
func (p *Portal) MyTasks() []model.Task {
	id, _ := p.Session.Identity()
	return p.Tasks.TasksForEmployee(id.EmployeeID)
}

// NextStatuses lists the moves an employee may offer for a cached task.
func (p *Portal) NextStatuses(taskID int) []model.Status {
	task, ok := p.Tasks.Get(taskID)
	if !ok {
		return nil
	}
	return workflow.AllowedNext(task.Status)
}

// AdvanceTask is the employee status change. It is refused without any
// network call when the task is not cached, belongs to someone else, or the
// workflow forbids the move. The update carries the task's other fields
// unchanged.
func (p *Portal) AdvanceTask(ctx context.Context, taskID int, next model.Status) (model.Task, error) {
	id, err := p.authorize(rbac.PermissionAdvanceTask)
	if err != nil {
		return model.Task{}, err
	}

	task, ok := p.Tasks.Get(taskID)
	if !ok {
		return model.Task{}, fmt.Errorf("task %d: %w", taskID, ErrTaskNotFound)
	}
	if id.EmployeeID == nil || !task.IsAssignedTo(*id.EmployeeID) {
		return model.Task{}, fmt.Errorf("task %d: %w", taskID, ErrNotAssigned)
	}
	if err := workflow.CheckTransition(task.Status, next); err != nil {
		logger.WithTrace(ctx, p.logger).Info("status change refused",
			zap.Int("task_id", taskID),
			zap.String("from", string(task.Status)),
			zap.String("to", string(next)),
		)
		return model.Task{}, err
	}

	in := task.Input()
	in.Status = next
	return p.Tasks.Update(ctx, taskID, in)
}

// SaveEmployee creates the employee when id is 0, otherwise replaces it.
func (p *Portal) SaveEmployee(ctx context.Context, id int, in model.EmployeeInput) (model.Employee, error) {
	if _, err := p.authorize(rbac.PermissionWriteEmployee); err != nil {
		return model.Employee{}, err
	}
	if id == 0 {
		return p.Employees.Create(ctx, in)
	}
	return p.Employees.Update(ctx, id, in)
}

// RemoveEmployee deletes the employee, drops their tasks from the cache and
// then reloads tasks so the cache matches the server's cascade. The three
// steps are not atomic.
func (p *Portal) RemoveEmployee(ctx context.Context, id int) error {
	if _, err := p.authorize(rbac.PermissionDeleteEmployee); err != nil {
		return err
	}
	if _, err := p.Employees.Delete(ctx, id); err != nil {
		return err
	}

	removed := p.Tasks.RemoveTasksByEmployee(id)
	logger.WithTrace(ctx, p.logger).Info("employee deleted",
		zap.Int("employee_id", id),
		zap.Int("cached_tasks_dropped", removed),
	)

	if _, err := p.Tasks.FetchAll(ctx); err != nil {
		return fmt.Errorf("employee %d deleted, task refresh failed: %w", id, err)
	}
	return nil
}

// SaveTask is the admin edit path: it creates when id is 0, otherwise
// replaces every field. Status is not checked against the workflow.
func (p *Portal) SaveTask(ctx context.Context, id int, in model.TaskInput) (model.Task, error) {
	if _, err := p.authorize(rbac.PermissionWriteTask); err != nil {
		return model.Task{}, err
	}
	if id == 0 {
		return p.Tasks.Create(ctx, in)
	}
	return p.Tasks.Update(ctx, id, in)
}

func (p *Portal) RemoveTask(ctx context.Context, id int) error {
	if _, err := p.authorize(rbac.PermissionDeleteTask); err != nil {
		return err
	}
	_, err := p.Tasks.Delete(ctx, id)
	return err
}
