package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"taskportal/internal/model"
)

// Login exchanges credentials for an identity.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.Identity, error) {
	var identity model.Identity
	err := c.do(ctx, "login", http.MethodPost, "/login", creds, &identity, "Login failed")
	return identity, err
}

func (c *Client) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	employees := []model.Employee{}
	err := c.do(ctx, "list_employees", http.MethodGet, "/employees", nil, &employees, "Failed to fetch employees")
	return employees, err
}

func (c *Client) CreateEmployee(ctx context.Context, in model.EmployeeInput) (model.Employee, error) {
	var created model.Employee
	err := c.do(ctx, "create_employee", http.MethodPost, "/employees", in, &created, "Failed to add employee")
	return created, err
}

func (c *Client) UpdateEmployee(ctx context.Context, id int, in model.EmployeeInput) (model.Employee, error) {
	var updated model.Employee
	err := c.do(ctx, "update_employee", http.MethodPut, "/employees/"+strconv.Itoa(id), in, &updated, "Failed to update employee")
	return updated, err
}

// DeleteEmployee returns id once the server acknowledged the delete.
func (c *Client) DeleteEmployee(ctx context.Context, id int) (int, error) {
	if err := c.do(ctx, "delete_employee", http.MethodDelete, "/employees/"+strconv.Itoa(id), nil, nil, "Failed to delete employee"); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	tasks := []model.Task{}
	err := c.do(ctx, "list_tasks", http.MethodGet, "/tasks", nil, &tasks, "Failed to fetch tasks")
	return tasks, err
}

func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	var created model.Task
	err := c.do(ctx, "create_task", http.MethodPost, "/tasks", in, &created, "Failed to add task")
	return created, err
}

func (c *Client) UpdateTask(ctx context.Context, id int, in model.TaskInput) (model.Task, error) {
	var updated model.Task
	err := c.do(ctx, "update_task", http.MethodPut, "/tasks/"+strconv.Itoa(id), in, &updated, "Failed to update task")
	return updated, err
}

func (c *Client) DeleteTask(ctx context.Context, id int) (int, error) {
	if err := c.do(ctx, "delete_task", http.MethodDelete, "/tasks/"+strconv.Itoa(id), nil, nil, "Failed to delete task"); err != nil {
		return 0, err
	}
	return id, nil
}

// ListActivity returns the newest audit entries, at most limit when limit > 0.
func (c *Client) ListActivity(ctx context.Context, limit int) ([]model.Activity, error) {
	path := "/activity"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	entries := []model.Activity{}
	err := c.do(ctx, "list_activity", http.MethodGet, path, nil, &entries, "Failed to fetch activity")
	return entries, err
}
