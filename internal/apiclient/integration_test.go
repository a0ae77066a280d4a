package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskportal/internal/apiclient"
	"taskportal/internal/handler"
	"taskportal/internal/httpserver"
	"taskportal/internal/model"
	"taskportal/internal/repository"
	"taskportal/internal/service"
	"taskportal/pkg/config"
	"taskportal/pkg/rbac"
)

func newBackend(t *testing.T) *apiclient.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	store := repository.NewMemoryStore()
	auth := service.NewAuthService(store.Employees(), log)
	require.NoError(t, auth.EnsureAdmin(context.Background(), config.AdminConfig{
		Email: "admin@example.com", Password: "root",
	}))

	router := httpserver.NewRouter(httpserver.Handlers{
		Auth:      handler.NewAuthHandler(auth, log),
		Employees: handler.NewEmployeeHandler(service.NewEmployeeService(store.Employees(), nil, nil, log), log),
		Tasks:     handler.NewTaskHandler(service.NewTaskService(store.Tasks(), store.Employees(), nil, nil, log), log),
	}, store.Employees(), log)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL+"/api", 2*time.Second, log)
}

func TestClientAgainstBackend(t *testing.T) {
	ctx := context.Background()
	c := newBackend(t)

	identity, err := c.Login(ctx, model.Credentials{
		Email: "admin@example.com", Password: "root", ExpectedRole: rbac.RoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, rbac.RoleAdmin, identity.Role)

	_, err = c.Login(ctx, model.Credentials{Email: "admin@example.com", Password: "wrong"})
	require.EqualError(t, err, "Invalid email or password")
	require.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))

	bob, err := c.CreateEmployee(ctx, model.EmployeeInput{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, rbac.RoleEmployee, bob.Role)

	_, err = c.CreateEmployee(ctx, model.EmployeeInput{Name: "Bob 2", Email: "bob@example.com"})
	require.EqualError(t, err, "Email already exists")

	task, err := c.CreateTask(ctx, model.TaskInput{Title: "Ship", AssignedTo: &bob.ID})
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, task.Status)

	in := task.Input()
	in.Status = model.StatusInProgress
	updated, err := c.UpdateTask(ctx, task.ID, in)
	require.NoError(t, err)
	require.Equal(t, model.StatusInProgress, updated.Status)
	require.True(t, task.CreatedAt.Equal(updated.CreatedAt))

	id, err := c.DeleteEmployee(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, bob.ID, id)

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	require.Empty(t, tasks)

	_, err = c.DeleteTask(ctx, task.ID)
	require.EqualError(t, err, "Task not found")
	require.Equal(t, http.StatusNotFound, apiclient.StatusCode(err))
}
