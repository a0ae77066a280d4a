package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"taskportal/internal/model"
)

func TestMemoryEmployeeEmailUnique(t *testing.T) {
	ctx := context.Background()
	employees := NewMemoryStore().Employees()

	a := model.Employee{Name: "A", Email: "a@example.com", Role: "employee"}
	require.NoError(t, employees.Create(ctx, &a))
	require.Equal(t, 1, a.ID)

	dup := model.Employee{Name: "A2", Email: "A@example.com"}
	require.ErrorIs(t, employees.Create(ctx, &dup), ErrDuplicateEmail)

	b := model.Employee{Name: "B", Email: "b@example.com"}
	require.NoError(t, employees.Create(ctx, &b))
	b.Email = "a@example.com"
	require.ErrorIs(t, employees.Update(ctx, &b), ErrDuplicateEmail)

	missing := model.Employee{ID: 99, Email: "z@example.com"}
	require.ErrorIs(t, employees.Update(ctx, &missing), ErrNotFound)
}

func TestMemoryDeleteCascadesTasks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	employees, tasks := store.Employees(), store.Tasks()

	e := model.Employee{Name: "C", Email: "c@example.com"}
	require.NoError(t, employees.Create(ctx, &e))
	other := model.Employee{Name: "D", Email: "d@example.com"}
	require.NoError(t, employees.Create(ctx, &other))

	for _, assignee := range []*int{&e.ID, &e.ID, &other.ID, nil} {
		task := model.Task{Title: "t", AssignedTo: assignee, Status: model.StatusPending}
		require.NoError(t, tasks.Create(ctx, &task))
		require.False(t, task.CreatedAt.IsZero())
	}

	removed, err := employees.Delete(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	left, err := tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 2)
	for _, task := range left {
		require.False(t, task.IsAssignedTo(e.ID))
	}

	_, err = employees.Delete(ctx, e.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTaskUpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryStore().Tasks()

	task := model.Task{Title: "t", Status: model.StatusPending}
	require.NoError(t, tasks.Create(ctx, &task))
	created := task.CreatedAt

	update := model.Task{ID: task.ID, Title: "t2", Status: model.StatusCompleted}
	require.NoError(t, tasks.Update(ctx, &update))
	require.Equal(t, created, update.CreatedAt)

	got, err := tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "t2", got.Title)
	require.Equal(t, created, got.CreatedAt)

	require.NoError(t, tasks.Delete(ctx, task.ID))
	require.ErrorIs(t, tasks.Delete(ctx, task.ID), ErrNotFound)
}
