package model

import "time"

// Activity is one entry of the audit trail built from portal events.
type Activity struct {
	ID         int       `json:"id"`
	EventID    string    `json:"eventId"`
	RoutingKey string    `json:"routingKey"`
	Entity     string    `json:"entity"`
	EntityID   int       `json:"entityId"`
	Summary    string    `json:"summary"`
	TraceID    string    `json:"traceId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
