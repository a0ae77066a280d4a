package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"taskportal/internal/model"
)

type published struct {
	routingKey string
	payload    any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{routingKey: routingKey, payload: payload})
	return p.err
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.routingKey
	}
	return out
}

// mapCache stores JSON like the redis cache does, so hidden fields behave the
// same way.
type mapCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	generations map[string]int64
	hits        int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}, generations: map[string]int64{}}
}

func (c *mapCache) GetJSON(_ context.Context, key string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false
	}
	c.hits++
	return json.Unmarshal(raw, dst) == nil
}

func (c *mapCache) Generation(_ context.Context, key string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key], true
}

func (c *mapCache) SetJSON(_ context.Context, key string, gen int64, v any) {
	raw, _ := json.Marshal(v)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key] != gen {
		return
	}
	c.entries[key] = raw
}

func (c *mapCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.generations[k]++
		delete(c.entries, k)
	}
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

var errBroker = errors.New("broker unavailable")

// hookedTaskRepo runs afterList between the storage read and the cache fill,
// standing in for a write that lands while a list request is in flight.
type hookedTaskRepo struct {
	TaskRepository
	afterList func()
}

func (r *hookedTaskRepo) List(ctx context.Context) ([]model.Task, error) {
	tasks, err := r.TaskRepository.List(ctx)
	if r.afterList != nil {
		hook := r.afterList
		r.afterList = nil
		hook()
	}
	return tasks, err
}
