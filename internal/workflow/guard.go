// Package workflow holds the status transition guard applied to
// employee-initiated task changes.
package workflow

import (
	"errors"
	"fmt"

	"taskportal/internal/model"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError is returned by CheckTransition. It matches
// ErrInvalidTransition under errors.Is.
type TransitionError struct {
	From model.Status
	To   model.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// AllowedNext returns the statuses a task in status may move to next.
// completed and unknown statuses have no successor.
func AllowedNext(status model.Status) []model.Status {
	switch status {
	case model.StatusPending:
		return []model.Status{model.StatusInProgress}
	case model.StatusInProgress:
		return []model.Status{model.StatusCompleted}
	default:
		return nil
	}
}

func CanTransition(from, to model.Status) bool {
	for _, s := range AllowedNext(from) {
		if s == to {
			return true
		}
	}
	return false
}

func CheckTransition(from, to model.Status) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// IsTerminal reports whether no further transition is possible from status.
func IsTerminal(status model.Status) bool {
	return len(AllowedNext(status)) == 0
}
