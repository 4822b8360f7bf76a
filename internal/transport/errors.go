package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// maxBodyExcerpt bounds how much of an error response ends up in messages.
const maxBodyExcerpt = 512

// Error is returned when a call does not complete with the expected status,
// either because the server answered with another status or because no
// answer was received at all (StatusCode is zero then).
type Error struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
	}
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Endpoint, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the call could succeed: server errors,
// timeouts and connection failures are, client errors and cancellation are not.
// Nothing in this module retries; the classification is informational.
func (e *Error) Retryable() bool {
	switch {
	case e.StatusCode >= 500:
		return true
	case e.StatusCode != 0:
		return false
	case e.Err == nil:
		return false
	case errors.Is(e.Err, context.Canceled):
		return false
	case errors.Is(e.Err, context.DeadlineExceeded):
		return true
	}
	var netErr net.Error
	if errors.As(e.Err, &netErr) {
		return true
	}
	return false
}

func excerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		return string(body[:maxBodyExcerpt]) + "..."
	}
	return string(body)
}
