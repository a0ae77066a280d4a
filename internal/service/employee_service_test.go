package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskportal/contracts/mq"
	"taskportal/internal/cache"
	"taskportal/internal/model"
	"taskportal/internal/repository"
	"taskportal/pkg/rbac"
)

type serviceFixture struct {
	store     *repository.MemoryStore
	cache     *mapCache
	publisher *recordingPublisher
	employees *EmployeeService
	tasks     *TaskService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		store:     repository.NewMemoryStore(),
		cache:     newMapCache(),
		publisher: &recordingPublisher{},
	}
	f.employees = NewEmployeeService(f.store.Employees(), f.cache, f.publisher, zap.NewNop())
	f.tasks = NewTaskService(f.store.Tasks(), f.store.Employees(), f.cache, f.publisher, zap.NewNop())
	return f
}

func TestEmployeeCreateValidates(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	cases := []struct {
		name  string
		in    model.EmployeeInput
		field string
	}{
		{"missing name", model.EmployeeInput{Email: "a@example.com"}, "name"},
		{"missing email", model.EmployeeInput{Name: "A"}, "email"},
		{"malformed email", model.EmployeeInput{Name: "A", Email: "nope"}, "email"},
		{"unknown role", model.EmployeeInput{Name: "A", Email: "a@example.com", Role: "owner"}, "role"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.employees.Create(ctx, tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}
	require.Empty(t, f.publisher.keys())
}

func TestEmployeeCreateDefaultsRoleAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	e, err := f.employees.Create(ctx, model.EmployeeInput{Name: " Ann ", Email: "Ann@Example.com"})
	require.NoError(t, err)
	require.Equal(t, "Ann", e.Name)
	require.Equal(t, "ann@example.com", e.Email)
	require.Equal(t, rbac.RoleEmployee, e.Role)

	_, err = f.employees.Create(ctx, model.EmployeeInput{Name: "Ann 2", Email: "ANN@example.com"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Email already exists", verr.Message)

	require.Equal(t, []string{mq.RoutingKeyEmployeeCreated}, f.publisher.keys())
}

func TestEmployeeUpdateKeepsPasswordUnlessGiven(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	auth := NewAuthService(f.store.Employees(), zap.NewNop())

	e, err := f.employees.Create(ctx, model.EmployeeInput{Name: "Ann", Email: "ann@example.com", Password: "first"})
	require.NoError(t, err)

	_, err = f.employees.Update(ctx, e.ID, model.EmployeeInput{Name: "Ann B", Email: "ann@example.com"})
	require.NoError(t, err)
	_, err = auth.Login(ctx, model.Credentials{Email: "ann@example.com", Password: "first"})
	require.NoError(t, err)

	_, err = f.employees.Update(ctx, e.ID, model.EmployeeInput{Name: "Ann B", Email: "ann@example.com", Password: "second"})
	require.NoError(t, err)
	_, err = auth.Login(ctx, model.Credentials{Email: "ann@example.com", Password: "first"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, model.Credentials{Email: "ann@example.com", Password: "second"})
	require.NoError(t, err)

	_, err = f.employees.Update(ctx, 999, model.EmployeeInput{Name: "X", Email: "x@example.com"})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEmployeeListIsCachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	list, err := f.employees.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
	require.True(t, f.cache.has(cache.KeyEmployees))

	_, err = f.employees.Create(ctx, model.EmployeeInput{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	require.False(t, f.cache.has(cache.KeyEmployees))

	list, err = f.employees.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = f.employees.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 1, f.cache.hits)
}

func TestEmployeeDeleteCascadesAndInvalidatesTasks(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	e, err := f.employees.Create(ctx, model.EmployeeInput{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, model.TaskInput{Title: "T1", AssignedTo: &e.ID})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, model.TaskInput{Title: "T2"})
	require.NoError(t, err)

	_, err = f.tasks.List(ctx)
	require.NoError(t, err)
	require.True(t, f.cache.has(cache.KeyTasks))

	removed, err := f.employees.Delete(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.False(t, f.cache.has(cache.KeyTasks))

	tasks, err := f.tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "T2", tasks[0].Title)

	_, err = f.employees.Delete(ctx, e.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEmployeePublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.publisher.err = errBroker

	e, err := f.employees.Create(ctx, model.EmployeeInput{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	require.NotZero(t, e.ID)
}

func TestTaskListFillRacingCascadeIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	e, err := f.employees.Create(ctx, model.EmployeeInput{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, model.TaskInput{Title: "T1", AssignedTo: &e.ID})
	require.NoError(t, err)

	repo := &hookedTaskRepo{TaskRepository: f.store.Tasks()}
	tasks := NewTaskService(repo, f.store.Employees(), f.cache, f.publisher, zap.NewNop())
	repo.afterList = func() {
		_, err := f.employees.Delete(ctx, e.ID)
		require.NoError(t, err)
	}

	// the in-flight read still sees the task it started with
	list, err := tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, f.cache.has(cache.KeyTasks))

	list, err = tasks.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}
