package service

import (
	"context"

	"taskportal/internal/model"
)

// EmployeeRepository is satisfied by the Postgres and the in-memory
// repositories.
type EmployeeRepository interface {
	List(ctx context.Context) ([]model.Employee, error)
	Get(ctx context.Context, id int) (model.Employee, error)
	GetByEmail(ctx context.Context, email string) (model.Employee, error)
	Create(ctx context.Context, e *model.Employee) error
	Update(ctx context.Context, e *model.Employee) error
	// Delete removes the employee and the tasks assigned to them, returning
	// how many tasks went with it.
	Delete(ctx context.Context, id int) (int, error)
	Ping(ctx context.Context) error
}

type TaskRepository interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id int) (model.Task, error)
	Create(ctx context.Context, t *model.Task) error
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id int) error
}

// Cache fronts the list endpoints. Implementations swallow their own
// failures; a broken cache degrades to a miss.
//
// Fills are guarded by a per-key generation: read it before the storage read,
// pass it to SetJSON, and the write is dropped if a Delete happened meanwhile.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	Generation(ctx context.Context, key string) (gen int64, ok bool)
	SetJSON(ctx context.Context, key string, gen int64, v any)
	Delete(ctx context.Context, keys ...string)
}

// Publisher emits change events after a write has been committed.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// NopCache never hits.
type NopCache struct{}

func (NopCache) GetJSON(context.Context, string, any) bool        { return false }
func (NopCache) Generation(context.Context, string) (int64, bool) { return 0, false }
func (NopCache) SetJSON(context.Context, string, int64, any)      {}
func (NopCache) Delete(context.Context, ...string)                {}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
