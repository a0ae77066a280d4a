package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrRoleMismatch       = errors.New("role mismatch")
)

// RoleMismatchError is returned by Login when the password is right but the
// account belongs to a different role than the login form asked for.
type RoleMismatchError struct {
	Expected string
	Actual   string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("Access denied: this account is not an %s account", e.Expected)
}

func (e *RoleMismatchError) Is(target error) bool {
	return target == ErrRoleMismatch
}

// ValidationError reports a rejected request body. The message is shown to
// the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
