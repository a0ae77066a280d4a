package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskportal/internal/model"
	"taskportal/internal/repository"
	"taskportal/pkg/config"
	"taskportal/pkg/rbac"
)

func newAuthFixture(t *testing.T) (*AuthService, *EmployeeService) {
	t.Helper()
	store := repository.NewMemoryStore()
	auth := NewAuthService(store.Employees(), zap.NewNop())
	employees := NewEmployeeService(store.Employees(), nil, nil, zap.NewNop())
	return auth, employees
}

func TestLoginSucceedsWithMatchingRole(t *testing.T) {
	ctx := context.Background()
	auth, employees := newAuthFixture(t)

	e, err := employees.Create(ctx, model.EmployeeInput{
		Name: "Bob", Email: "Bob@Example.com", Role: rbac.RoleEmployee, Password: "pw",
	})
	require.NoError(t, err)

	identity, err := auth.Login(ctx, model.Credentials{
		Email: " bob@example.com ", Password: "pw", ExpectedRole: rbac.RoleEmployee,
	})
	require.NoError(t, err)
	require.Equal(t, "Bob", identity.Name)
	require.Equal(t, rbac.RoleEmployee, identity.Role)
	require.NotNil(t, identity.EmployeeID)
	require.Equal(t, e.ID, *identity.EmployeeID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	auth, employees := newAuthFixture(t)
	_, err := employees.Create(ctx, model.EmployeeInput{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, model.Credentials{Email: "bob@example.com", Password: "nope"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, model.Credentials{Email: "ghost@example.com", Password: "pw"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithoutPasswordNeverSucceeds(t *testing.T) {
	ctx := context.Background()
	auth, employees := newAuthFixture(t)
	_, err := employees.Create(ctx, model.EmployeeInput{Name: "NoPw", Email: "nopw@example.com"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, model.Credentials{Email: "nopw@example.com", Password: ""})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRoleMismatch(t *testing.T) {
	ctx := context.Background()
	auth, employees := newAuthFixture(t)
	_, err := employees.Create(ctx, model.EmployeeInput{
		Name: "Bob", Email: "bob@example.com", Role: rbac.RoleEmployee, Password: "pw",
	})
	require.NoError(t, err)

	_, err = auth.Login(ctx, model.Credentials{
		Email: "bob@example.com", Password: "pw", ExpectedRole: rbac.RoleAdmin,
	})
	require.ErrorIs(t, err, ErrRoleMismatch)

	var mismatch *RoleMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, rbac.RoleAdmin, mismatch.Expected)
	require.Equal(t, rbac.RoleEmployee, mismatch.Actual)
	require.Equal(t, "Access denied: this account is not an admin account", err.Error())
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	ctx := context.Background()
	auth, employees := newAuthFixture(t)
	cfg := config.AdminConfig{Email: "Admin@Example.com", Password: "root"}

	require.NoError(t, auth.EnsureAdmin(ctx, cfg))
	require.NoError(t, auth.EnsureAdmin(ctx, cfg))

	list, err := employees.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Administrator", list[0].Name)
	require.Equal(t, rbac.RoleAdmin, list[0].Role)

	identity, err := auth.Login(ctx, model.Credentials{
		Email: "admin@example.com", Password: "root", ExpectedRole: rbac.RoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, rbac.RoleAdmin, identity.Role)
}

func TestEnsureAdminSkipsUnresolvedPassword(t *testing.T) {
	ctx := context.Background()
	auth, employees := newAuthFixture(t)

	require.NoError(t, auth.EnsureAdmin(ctx, config.AdminConfig{Email: "admin@example.com", Password: "${ADMIN_PASSWORD}"}))
	require.NoError(t, auth.EnsureAdmin(ctx, config.AdminConfig{Email: "admin@example.com"}))

	list, err := employees.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}
