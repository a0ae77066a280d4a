package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"taskportal/internal/model"
	"taskportal/internal/repository"
	"taskportal/pkg/config"
	"taskportal/pkg/logger"
	"taskportal/pkg/metrics"
	"taskportal/pkg/rbac"
	"taskportal/pkg/util"
)

type AuthService struct {
	employees EmployeeRepository
	logger    *zap.Logger
}

func NewAuthService(employees EmployeeRepository, logger *zap.Logger) *AuthService {
	return &AuthService{employees: employees, logger: logger}
}

// Login checks the credentials and returns the identity of the account.
// When ExpectedRole is set, an account of another role is refused even if
// the password matches.
func (s *AuthService) Login(ctx context.Context, creds model.Credentials) (model.Identity, error) {
	log := logger.WithTrace(ctx, s.logger)
	email := normalizeEmail(creds.Email)

	e, err := s.employees.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.IncrementLoginAttempt("server", "invalid_credentials")
		log.Info("Login rejected: unknown email", zap.String("email", email))
		return model.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		metrics.IncrementLoginAttempt("server", "error")
		log.Error("Login: failed to load account", zap.String("email", email), zap.Error(err))
		return model.Identity{}, err
	}

	if !util.CheckPassword(creds.Password, e.PasswordHash) {
		metrics.IncrementLoginAttempt("server", "invalid_credentials")
		log.Info("Login rejected: wrong password", zap.Int("employee_id", e.ID))
		return model.Identity{}, ErrInvalidCredentials
	}

	if creds.ExpectedRole != "" && creds.ExpectedRole != e.Role {
		metrics.IncrementLoginAttempt("server", "role_mismatch")
		log.Info("Login rejected: role mismatch",
			zap.Int("employee_id", e.ID),
			zap.String("expected_role", creds.ExpectedRole),
			zap.String("role", e.Role),
		)
		return model.Identity{}, &RoleMismatchError{Expected: creds.ExpectedRole, Actual: e.Role}
	}

	metrics.IncrementLoginAttempt("server", "success")
	log.Info("Login succeeded", zap.Int("employee_id", e.ID), zap.String("role", e.Role))

	id := e.ID
	return model.Identity{
		Name:       e.Name,
		Email:      e.Email,
		Role:       e.Role,
		EmployeeID: &id,
	}, nil
}

// EnsureAdmin creates the configured admin account when it does not exist
// yet. An existing account with that email is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	email := normalizeEmail(cfg.Email)
	if email == "" || cfg.Password == "" || strings.Contains(cfg.Password, "${") {
		s.logger.Warn("Admin seed skipped: admin email or password not configured")
		return nil
	}

	_, err := s.employees.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("Admin account already present", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := util.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "Administrator"
	}
	admin := &model.Employee{
		Name:         name,
		Email:        email,
		Role:         rbac.RoleAdmin,
		PasswordHash: hash,
	}
	if err := s.employees.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("Admin account seeded", zap.Int("employee_id", admin.ID), zap.String("email", email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
