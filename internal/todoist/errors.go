package todoist

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is matched (via errors.Is) by any APIError carrying a 404.
var ErrNotFound = errors.New("todoist: not found")

// APIError is returned when the Todoist API answers with a non-2xx status.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("Todoist API error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is lets callers test for ErrNotFound without type assertions.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Retryable reports whether the request may succeed when sent again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsServiceError reports whether err came from the API as a non-2xx answer.
func IsServiceError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
