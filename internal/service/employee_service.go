package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskportal/contracts/mq"
	"taskportal/internal/cache"
	"taskportal/internal/model"
	"taskportal/internal/repository"
	"taskportal/pkg/logger"
	"taskportal/pkg/rbac"
	"taskportal/pkg/trace"
	"taskportal/pkg/util"
)

type EmployeeService struct {
	repo      EmployeeRepository
	cache     Cache
	publisher Publisher
	logger    *zap.Logger
}

func NewEmployeeService(repo EmployeeRepository, c Cache, p Publisher, logger *zap.Logger) *EmployeeService {
	if c == nil {
		c = NopCache{}
	}
	if p == nil {
		p = NopPublisher{}
	}
	return &EmployeeService{repo: repo, cache: c, publisher: p, logger: logger}
}

func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	if s.cache.GetJSON(ctx, cache.KeyEmployees, &employees) {
		return employees, nil
	}

	gen, cacheable := s.cache.Generation(ctx, cache.KeyEmployees)
	employees, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []model.Employee{}
	}
	if cacheable {
		s.cache.SetJSON(ctx, cache.KeyEmployees, gen, employees)
	}
	return employees, nil
}

func (s *EmployeeService) Create(ctx context.Context, in model.EmployeeInput) (model.Employee, error) {
	e, err := s.fromInput(in)
	if err != nil {
		return model.Employee{}, err
	}
	if in.Password != "" {
		if e.PasswordHash, err = util.HashPassword(in.Password); err != nil {
			return model.Employee{}, err
		}
	}

	if err := s.repo.Create(ctx, &e); err != nil {
		return model.Employee{}, s.mapWriteError(err)
	}

	s.cache.Delete(ctx, cache.KeyEmployees)
	s.publish(ctx, mq.RoutingKeyEmployeeCreated, employeeEvent(ctx, e, 0))
	logger.WithTrace(ctx, s.logger).Info("Employee created", zap.Int("employee_id", e.ID))
	return e, nil
}

// Update replaces name, email and role. The stored password is kept unless
// a new one is supplied.
func (s *EmployeeService) Update(ctx context.Context, id int, in model.EmployeeInput) (model.Employee, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Employee{}, err
	}

	e, err := s.fromInput(in)
	if err != nil {
		return model.Employee{}, err
	}
	e.ID = id
	e.PasswordHash = current.PasswordHash
	if in.Password != "" {
		if e.PasswordHash, err = util.HashPassword(in.Password); err != nil {
			return model.Employee{}, err
		}
	}

	if err := s.repo.Update(ctx, &e); err != nil {
		return model.Employee{}, s.mapWriteError(err)
	}

	s.cache.Delete(ctx, cache.KeyEmployees)
	s.publish(ctx, mq.RoutingKeyEmployeeUpdated, employeeEvent(ctx, e, 0))
	logger.WithTrace(ctx, s.logger).Info("Employee updated", zap.Int("employee_id", id))
	return e, nil
}

// Delete removes the employee together with their tasks and returns the
// number of tasks removed.
func (s *EmployeeService) Delete(ctx context.Context, id int) (int, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	s.cache.Delete(ctx, cache.KeyEmployees, cache.KeyTasks)
	s.publish(ctx, mq.RoutingKeyEmployeeDeleted, employeeEvent(ctx, model.Employee{ID: id}, removed))
	logger.WithTrace(ctx, s.logger).Info("Employee deleted",
		zap.Int("employee_id", id),
		zap.Int("tasks_removed", removed),
	)
	return removed, nil
}

// Ping reports whether the backing storage is reachable.
func (s *EmployeeService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *EmployeeService) fromInput(in model.EmployeeInput) (model.Employee, error) {
	e := model.Employee{
		Name:  strings.TrimSpace(in.Name),
		Email: normalizeEmail(in.Email),
		Role:  strings.TrimSpace(in.Role),
	}
	if e.Name == "" {
		return e, invalid("name", "Name is required")
	}
	if e.Email == "" {
		return e, invalid("email", "Email is required")
	}
	if !strings.Contains(e.Email, "@") {
		return e, invalid("email", "Email is invalid")
	}
	if e.Role == "" {
		e.Role = rbac.RoleEmployee
	}
	if e.Role != rbac.RoleEmployee && e.Role != rbac.RoleAdmin {
		return e, invalid("role", "Role must be employee or admin")
	}
	return e, nil
}

func (s *EmployeeService) mapWriteError(err error) error {
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return invalid("email", "Email already exists")
	}
	return err
}

func (s *EmployeeService) publish(ctx context.Context, routingKey string, event mq.EmployeeEvent) {
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("Failed to publish employee event",
			zap.String("routing_key", routingKey),
			zap.Int("employee_id", event.EmployeeID),
			zap.Error(err),
		)
	}
}

func employeeEvent(ctx context.Context, e model.Employee, tasksRemoved int) mq.EmployeeEvent {
	return mq.EmployeeEvent{
		EventID:      uuid.NewString(),
		EmployeeID:   e.ID,
		Email:        e.Email,
		Role:         e.Role,
		TasksRemoved: tasksRemoved,
		TraceID:      trace.FromContext(ctx),
		OccurredAt:   time.Now().UTC(),
	}
}
