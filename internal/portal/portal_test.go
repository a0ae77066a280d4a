package portal

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"taskportal/internal/model"
	"taskportal/internal/session"
	"taskportal/internal/workflow"
	"taskportal/pkg/rbac"
)

type fakeAPI struct {
	mu        sync.Mutex
	identity  model.Identity
	employees []model.Employee
	tasks     []model.Task
	updates   int
	failList  error
}

func ptr(v int) *int { return &v }

func (f *fakeAPI) Login(context.Context, model.Credentials) (model.Identity, error) {
	return f.identity, nil
}

func (f *fakeAPI) ListEmployees(context.Context) ([]model.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.employees), nil
}

func (f *fakeAPI) CreateEmployee(_ context.Context, in model.EmployeeInput) (model.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := model.Employee{ID: 50 + len(f.employees), Name: in.Name, Email: in.Email, Role: in.Role}
	f.employees = append(f.employees, e)
	return e, nil
}

func (f *fakeAPI) UpdateEmployee(_ context.Context, id int, in model.EmployeeInput) (model.Employee, error) {
	return model.Employee{ID: id, Name: in.Name, Email: in.Email, Role: in.Role}, nil
}

func (f *fakeAPI) DeleteEmployee(_ context.Context, id int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employees = slices.DeleteFunc(f.employees, func(e model.Employee) bool { return e.ID == id })
	f.tasks = slices.DeleteFunc(f.tasks, func(t model.Task) bool { return t.IsAssignedTo(id) })
	return id, nil
}

func (f *fakeAPI) ListTasks(context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	return slices.Clone(f.tasks), nil
}

func (f *fakeAPI) CreateTask(_ context.Context, in model.TaskInput) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := model.Task{ID: 100 + len(f.tasks), Title: in.Title, Description: in.Description, AssignedTo: in.AssignedTo, Status: in.Status}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, id int, in model.TaskInput) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Title = in.Title
			f.tasks[i].Description = in.Description
			f.tasks[i].AssignedTo = in.AssignedTo
			f.tasks[i].Status = in.Status
			return f.tasks[i], nil
		}
	}
	return model.Task{}, errors.New("Task not found")
}

func (f *fakeAPI) DeleteTask(_ context.Context, id int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = slices.DeleteFunc(f.tasks, func(t model.Task) bool { return t.ID == id })
	return id, nil
}

func (f *fakeAPI) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

func loggedIn(t *testing.T, api *fakeAPI, role string) *Portal {
	t.Helper()
	p := New(api, nil)
	_, err := p.Login(context.Background(), model.Credentials{Email: "u@example.com", Password: "pw", ExpectedRole: role})
	require.NoError(t, err)
	return p
}

func TestEmployeeAdvanceScenario(t *testing.T) {
	api := &fakeAPI{
		identity: model.Identity{Name: "Eve", Role: rbac.RoleEmployee, EmployeeID: ptr(7)},
		tasks: []model.Task{
			{ID: 1, Title: "write report", AssignedTo: ptr(7), Status: model.StatusPending},
			{ID: 2, Title: "file expenses", AssignedTo: ptr(7), Status: model.StatusCompleted},
			{ID: 3, Title: "someone else", AssignedTo: ptr(8), Status: model.StatusPending},
		},
	}
	p := loggedIn(t, api, rbac.RoleEmployee)
	ctx := context.Background()
	require.NoError(t, p.LoadEmployeeDashboard(ctx))
	require.Len(t, p.MyTasks(), 2)

	// skipping a step is refused before any request
	_, err := p.AdvanceTask(ctx, 1, model.StatusCompleted)
	require.ErrorIs(t, err, workflow.ErrInvalidTransition)
	require.Equal(t, 0, api.updateCount())
	require.Equal(t, []model.Status{model.StatusInProgress}, p.NextStatuses(1))

	got, err := p.AdvanceTask(ctx, 1, model.StatusInProgress)
	require.NoError(t, err)
	require.Equal(t, model.StatusInProgress, got.Status)
	require.Equal(t, "write report", got.Title, "other fields are sent unchanged")

	_, err = p.AdvanceTask(ctx, 1, model.StatusCompleted)
	require.NoError(t, err)
	cached, _ := p.Tasks.Get(1)
	require.Equal(t, model.StatusCompleted, cached.Status)

	for _, s := range []model.Status{model.StatusPending, model.StatusInProgress, model.StatusCompleted} {
		_, err = p.AdvanceTask(ctx, 1, s)
		require.ErrorIs(t, err, workflow.ErrInvalidTransition)
		_, err = p.AdvanceTask(ctx, 2, s)
		require.ErrorIs(t, err, workflow.ErrInvalidTransition)
	}
	require.Equal(t, 2, api.updateCount())
	require.Empty(t, p.NextStatuses(1))
}

func TestEmployeeCannotAdvanceForeignOrUnknownTask(t *testing.T) {
	api := &fakeAPI{
		identity: model.Identity{Name: "Eve", Role: rbac.RoleEmployee, EmployeeID: ptr(7)},
		tasks:    []model.Task{{ID: 3, AssignedTo: ptr(8), Status: model.StatusPending}},
	}
	p := loggedIn(t, api, rbac.RoleEmployee)
	require.NoError(t, p.LoadEmployeeDashboard(context.Background()))

	_, err := p.AdvanceTask(context.Background(), 3, model.StatusInProgress)
	require.ErrorIs(t, err, ErrNotAssigned)
	_, err = p.AdvanceTask(context.Background(), 99, model.StatusInProgress)
	require.ErrorIs(t, err, ErrTaskNotFound)
	require.Equal(t, 0, api.updateCount())
}

func TestEmployeeCannotUseAdminIntents(t *testing.T) {
	api := &fakeAPI{identity: model.Identity{Name: "Eve", Role: rbac.RoleEmployee, EmployeeID: ptr(7)}}
	p := loggedIn(t, api, rbac.RoleEmployee)

	var denied *rbac.PermissionDeniedError
	_, err := p.SaveTask(context.Background(), 0, model.TaskInput{Title: "x", Status: model.StatusPending})
	require.ErrorAs(t, err, &denied)
	require.ErrorAs(t, p.RemoveEmployee(context.Background(), 1), &denied)
	require.ErrorAs(t, p.LoadAdminDashboard(context.Background()), &denied)
}

func TestIntentsRequireLogin(t *testing.T) {
	p := New(&fakeAPI{}, nil)
	require.ErrorIs(t, p.LoadEmployeeDashboard(context.Background()), ErrNotAuthenticated)
	require.Empty(t, p.MyTasks())
}

func TestAdminOverridesWorkflow(t *testing.T) {
	api := &fakeAPI{
		identity: model.Identity{Name: "Ann", Role: rbac.RoleAdmin},
		tasks:    []model.Task{{ID: 1, Title: "done", Status: model.StatusCompleted}},
	}
	p := loggedIn(t, api, rbac.RoleAdmin)
	require.NoError(t, p.LoadAdminDashboard(context.Background()))

	got, err := p.SaveTask(context.Background(), 1, model.TaskInput{Title: "reopened", Status: model.StatusPending})
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, got.Status)

	created, err := p.SaveTask(context.Background(), 0, model.TaskInput{Title: "new", AssignedTo: ptr(4), Status: model.StatusCompleted})
	require.NoError(t, err)
	cached, ok := p.Tasks.Get(created.ID)
	require.True(t, ok)
	require.Equal(t, model.StatusCompleted, cached.Status)

	require.NoError(t, p.RemoveTask(context.Background(), 1))
	_, ok = p.Tasks.Get(1)
	require.False(t, ok)
}

func TestAdminLoginRejectsEmployeeAccount(t *testing.T) {
	api := &fakeAPI{identity: model.Identity{Name: "Eve", Role: rbac.RoleEmployee, EmployeeID: ptr(7)}}
	p := New(api, nil)

	_, err := p.Login(context.Background(), model.Credentials{Email: "eve@example.com", Password: "pw", ExpectedRole: rbac.RoleAdmin})
	require.ErrorIs(t, err, session.ErrRoleMismatch)
	require.Equal(t, session.StateFailed, p.Session.State())
}

func TestRemoveEmployeeCascades(t *testing.T) {
	api := &fakeAPI{
		identity:  model.Identity{Name: "Ann", Role: rbac.RoleAdmin},
		employees: []model.Employee{{ID: 3, Name: "Cid"}, {ID: 4, Name: "Dee"}},
		tasks: []model.Task{
			{ID: 1, AssignedTo: ptr(3), Status: model.StatusPending},
			{ID: 2, AssignedTo: ptr(4), Status: model.StatusPending},
			{ID: 3, AssignedTo: ptr(3), Status: model.StatusInProgress},
		},
	}
	p := loggedIn(t, api, rbac.RoleAdmin)
	require.NoError(t, p.LoadAdminDashboard(context.Background()))

	require.NoError(t, p.RemoveEmployee(context.Background(), 3))

	_, ok := p.Employees.Get(3)
	require.False(t, ok)
	for _, task := range p.Tasks.Tasks() {
		require.False(t, task.IsAssignedTo(3))
	}
	require.Len(t, p.Tasks.Tasks(), 1)
}

func TestRemoveEmployeeRefreshFailure(t *testing.T) {
	api := &fakeAPI{
		identity:  model.Identity{Name: "Ann", Role: rbac.RoleAdmin},
		employees: []model.Employee{{ID: 3, Name: "Cid"}},
		tasks:     []model.Task{{ID: 1, AssignedTo: ptr(3), Status: model.StatusPending}},
	}
	p := loggedIn(t, api, rbac.RoleAdmin)
	require.NoError(t, p.LoadAdminDashboard(context.Background()))

	api.failList = errors.New("Failed to fetch tasks")
	err := p.RemoveEmployee(context.Background(), 3)
	require.Error(t, err)
	require.Equal(t, "Failed to fetch tasks", p.Tasks.Err())

	// the local purge already dropped the dependent task
	require.Empty(t, p.Tasks.Tasks())
	require.Empty(t, p.Employees.Employees())
}

func TestSaveEmployee(t *testing.T) {
	api := &fakeAPI{identity: model.Identity{Name: "Ann", Role: rbac.RoleAdmin}}
	p := loggedIn(t, api, rbac.RoleAdmin)

	e, err := p.SaveEmployee(context.Background(), 0, model.EmployeeInput{Name: "Fay", Email: "fay@example.com", Role: rbac.RoleEmployee})
	require.NoError(t, err)
	require.Len(t, p.Employees.Employees(), 1)

	_, err = p.SaveEmployee(context.Background(), e.ID, model.EmployeeInput{Name: "Fay Z", Email: "fay@example.com", Role: rbac.RoleEmployee})
	require.NoError(t, err)
	got, _ := p.Employees.Get(e.ID)
	require.Equal(t, "Fay Z", got.Name)
}
