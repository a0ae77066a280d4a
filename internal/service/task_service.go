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
	"taskportal/pkg/trace"
)

// TaskService persists tasks. It does not enforce the status workflow:
// requests carry no identity, and the admin view may set any status.
type TaskService struct {
	repo      TaskRepository
	employees EmployeeRepository
	cache     Cache
	publisher Publisher
	logger    *zap.Logger
}

func NewTaskService(repo TaskRepository, employees EmployeeRepository, c Cache, p Publisher, logger *zap.Logger) *TaskService {
	if c == nil {
		c = NopCache{}
	}
	if p == nil {
		p = NopPublisher{}
	}
	return &TaskService{repo: repo, employees: employees, cache: c, publisher: p, logger: logger}
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if s.cache.GetJSON(ctx, cache.KeyTasks, &tasks) {
		return tasks, nil
	}

	gen, cacheable := s.cache.Generation(ctx, cache.KeyTasks)
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	if cacheable {
		s.cache.SetJSON(ctx, cache.KeyTasks, gen, tasks)
	}
	return tasks, nil
}

// Create stores a new task. A missing status starts the task as pending.
func (s *TaskService) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if in.Status == "" {
		in.Status = model.StatusPending
	}
	t, err := s.fromInput(ctx, in)
	if err != nil {
		return model.Task{}, err
	}

	if err := s.repo.Create(ctx, &t); err != nil {
		return model.Task{}, err
	}

	s.cache.Delete(ctx, cache.KeyTasks)
	s.publish(ctx, mq.RoutingKeyTaskCreated, taskEvent(ctx, t, ""))
	logger.WithTrace(ctx, s.logger).Info("Task created", zap.Int("task_id", t.ID))
	return t, nil
}

// Update replaces every field but createdAt.
func (s *TaskService) Update(ctx context.Context, id int, in model.TaskInput) (model.Task, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	t, err := s.fromInput(ctx, in)
	if err != nil {
		return model.Task{}, err
	}
	t.ID = id

	if err := s.repo.Update(ctx, &t); err != nil {
		return model.Task{}, err
	}

	s.cache.Delete(ctx, cache.KeyTasks)
	s.publish(ctx, mq.RoutingKeyTaskUpdated, taskEvent(ctx, t, current.Status))
	logger.WithTrace(ctx, s.logger).Info("Task updated",
		zap.Int("task_id", id),
		zap.String("from_status", string(current.Status)),
		zap.String("to_status", string(t.Status)),
	)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Delete(ctx, cache.KeyTasks)
	s.publish(ctx, mq.RoutingKeyTaskDeleted, taskEvent(ctx, model.Task{ID: id}, ""))
	logger.WithTrace(ctx, s.logger).Info("Task deleted", zap.Int("task_id", id))
	return nil
}

func (s *TaskService) fromInput(ctx context.Context, in model.TaskInput) (model.Task, error) {
	t := model.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		AssignedTo:  in.AssignedTo,
		Status:      in.Status,
	}
	if t.Title == "" {
		return t, invalid("title", "Title is required")
	}
	if !t.Status.Valid() {
		return t, invalid("status", "Status must be pending, in-progress or completed")
	}
	if t.AssignedTo != nil {
		_, err := s.employees.Get(ctx, *t.AssignedTo)
		if errors.Is(err, repository.ErrNotFound) {
			return t, invalid("assignedTo", "Assigned employee does not exist")
		}
		if err != nil {
			return t, err
		}
	}
	return t, nil
}

func (s *TaskService) publish(ctx context.Context, routingKey string, event mq.TaskEvent) {
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("Failed to publish task event",
			zap.String("routing_key", routingKey),
			zap.Int("task_id", event.TaskID),
			zap.Error(err),
		)
	}
}

func taskEvent(ctx context.Context, t model.Task, previous model.Status) mq.TaskEvent {
	return mq.TaskEvent{
		EventID:        uuid.NewString(),
		TaskID:         t.ID,
		AssignedTo:     t.AssignedTo,
		Status:         string(t.Status),
		PreviousStatus: string(previous),
		TraceID:        trace.FromContext(ctx),
		OccurredAt:     time.Now().UTC(),
	}
}
