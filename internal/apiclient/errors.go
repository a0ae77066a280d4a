package apiclient

import (
	"context"
	"errors"
	"net"
)

// NetworkErrorMessage is shown when the API could not be reached at all.
const NetworkErrorMessage = "Network error. Please try again."

// Error is the normalized form of every failed API call. Message is what the
// user sees: the server's {"error": ...} field, or a per-operation fallback.
type Error struct {
	Op         string
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind classifies the failure for logs and metrics.
func (e *Error) Kind() string {
	if e.StatusCode == 0 {
		if errors.Is(e.Err, context.Canceled) {
			return "canceled"
		}
		if errors.Is(e.Err, context.DeadlineExceeded) {
			return "timeout"
		}
		var netErr net.Error
		if errors.As(e.Err, &netErr) && netErr.Timeout() {
			return "network_timeout"
		}
		if e.Err != nil && e.Message != NetworkErrorMessage {
			return "request_error"
		}
		return "network_error"
	}
	switch {
	case e.StatusCode == 401 || e.StatusCode == 403:
		return "unauthorized"
	case e.StatusCode == 404:
		return "not_found"
	case e.StatusCode >= 500:
		return "server_error"
	case e.StatusCode >= 400:
		return "client_error"
	default:
		return "decode_error"
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNetwork reports whether err is an API error raised before any response
// arrived.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == 0 && apiErr.Message == NetworkErrorMessage
}
