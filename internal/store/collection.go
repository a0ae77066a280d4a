// Package store is the client-side entity cache. It is the only owner of the
// employee and task collections; views read snapshots and mutate through the
// store operations, which sync with the API.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"taskportal/pkg/logger"
	"taskportal/pkg/metrics"
)

type Phase string

const (
	PhasePending  Phase = "pending"
	PhaseResolved Phase = "resolved"
	PhaseRejected Phase = "rejected"
)

type Op string

const (
	OpFetchAll         Op = "fetch_all"
	OpCreate           Op = "create"
	OpUpdate           Op = "update"
	OpDelete           Op = "delete"
	OpRemoveByEmployee Op = "remove_by_employee"
)

// Event is published to subscribers on every phase change.
type Event struct {
	Entity string
	Op     Op
	Phase  Phase
	Err    string
}

type Listener func(Event)

// collection holds one cached entity list plus its loading/error slots.
// Writes happen only in begin/resolve/reject, each under the mutex, so the
// cache reflects whichever response completes last.
type collection[T any] struct {
	entity string
	idOf   func(T) int
	clone  func(T) T
	logger *zap.Logger

	mu        sync.RWMutex
	items     []T
	loading   bool
	err       string
	listeners map[int]Listener
	nextSub   int
}

func newCollection[T any](entity string, idOf func(T) int, clone func(T) T, log *zap.Logger) *collection[T] {
	if log == nil {
		log = zap.NewNop()
	}
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &collection[T]{
		entity:    entity,
		idOf:      idOf,
		clone:     clone,
		logger:    log.With(zap.String("entity", entity)),
		items:     []T{},
		listeners: make(map[int]Listener),
	}
}

// Loading reports whether an operation is in flight. With overlapping
// operations the first completion clears it.
func (c *collection[T]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err is the message of the last rejected operation, cleared when the next
// operation starts.
func (c *collection[T]) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Subscribe registers l for phase events and returns its cancel func.
// Listeners run synchronously after the state change, outside the lock.
func (c *collection[T]) Subscribe(l Listener) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.listeners[id] = l
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	for i, v := range c.items {
		out[i] = c.clone(v)
	}
	return out
}

func (c *collection[T]) find(id int) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.items {
		if c.idOf(v) == id {
			return c.clone(v), true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) begin(op Op) {
	c.mu.Lock()
	c.loading = true
	c.err = ""
	c.mu.Unlock()
	c.publish(Event{Entity: c.entity, Op: op, Phase: PhasePending})
}

func (c *collection[T]) resolve(op Op, apply func([]T) []T) {
	c.mu.Lock()
	c.loading = false
	c.items = apply(c.items)
	c.mu.Unlock()
	c.publish(Event{Entity: c.entity, Op: op, Phase: PhaseResolved})
}

func (c *collection[T]) reject(op Op, err error) {
	c.mu.Lock()
	c.loading = false
	c.err = err.Error()
	c.mu.Unlock()
	c.publish(Event{Entity: c.entity, Op: op, Phase: PhaseRejected, Err: err.Error()})
}

// mutate applies a local change that needs no API round trip.
func (c *collection[T]) mutate(op Op, apply func([]T) []T) {
	c.mu.Lock()
	c.items = apply(c.items)
	c.mu.Unlock()
	c.publish(Event{Entity: c.entity, Op: op, Phase: PhaseResolved})
}

func (c *collection[T]) publish(ev Event) {
	metrics.IncrementStoreOperation(ev.Entity, string(ev.Op), string(ev.Phase))

	c.mu.RLock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}

// run drives one API-backed operation through its three phases. The call is
// detached from ctx cancellation: once issued it completes or fails on its
// own (bounded by the HTTP client timeout) and its result is always applied.
func run[T, R any](ctx context.Context, c *collection[T], op Op, call func(context.Context) (R, error), apply func([]T, R) []T) (R, error) {
	log := logger.WithTrace(ctx, c.logger)
	c.begin(op)

	res, err := call(context.WithoutCancel(ctx))
	if err != nil {
		log.Info("store operation rejected", zap.String("op", string(op)), zap.Error(err))
		c.reject(op, err)
		var zero R
		return zero, err
	}

	c.resolve(op, func(items []T) []T { return apply(items, res) })
	log.Debug("store operation resolved", zap.String("op", string(op)))
	return res, nil
}

func appendItem[T any](items []T, v T) []T {
	return append(items, v)
}

// replaceByID swaps the element with v's id in place. A missing id leaves
// items untouched.
func replaceByID[T any](items []T, v T, idOf func(T) int) []T {
	id := idOf(v)
	for i := range items {
		if idOf(items[i]) == id {
			items[i] = v
			return items
		}
	}
	return items
}

func removeWhere[T any](items []T, drop func(T) bool) []T {
	kept := make([]T, 0, len(items))
	for _, v := range items {
		if !drop(v) {
			kept = append(kept, v)
		}
	}
	return kept
}
