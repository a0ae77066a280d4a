package mq

import "time"

// Routing keys published on the portal exchange. The first segment names the
// entity.
const (
	RoutingKeyEmployeeCreated = "employee.created"
	RoutingKeyEmployeeUpdated = "employee.updated"
	RoutingKeyEmployeeDeleted = "employee.deleted"
	RoutingKeyTaskCreated     = "task.created"
	RoutingKeyTaskUpdated     = "task.updated"
	RoutingKeyTaskDeleted     = "task.deleted"

	EntityEmployee = "employee"
	EntityTask     = "task"
)

// EmployeeEvent 员工变更事件
type EmployeeEvent struct {
	EventID      string    `json:"event_id"`
	EmployeeID   int       `json:"employee_id"`
	Email        string    `json:"email,omitempty"`
	Role         string    `json:"role,omitempty"`
	TasksRemoved int       `json:"tasks_removed,omitempty"` // 仅 employee.deleted
	TraceID      string    `json:"trace_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// TaskEvent 任务变更事件
type TaskEvent struct {
	EventID        string    `json:"event_id"`
	TaskID         int       `json:"task_id"`
	AssignedTo     *int      `json:"assigned_to,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"` // 仅 task.updated
	TraceID        string    `json:"trace_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
