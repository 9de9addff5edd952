package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/teemow/todoistguard/internal/todoist"
)

// Sentinel errors. Match with errors.Is; the concrete error carries the
// details and the message shown to the agent.
var (
	// ErrIdentityMismatch means the fetched entity does not carry the name
	// the caller expected.
	ErrIdentityMismatch = errors.New("identity mismatch")

	// ErrInvalidVerificationParameters means the supplied context fields do
	// not fit the entity's actual shape, e.g. only a project name for a
	// comment that belongs to a task.
	ErrInvalidVerificationParameters = errors.New("invalid verification parameters")

	// ErrAmbiguousDestination means a move names zero or several destinations.
	ErrAmbiguousDestination = errors.New("ambiguous destination")

	// ErrIncompleteVerificationParameters means a destination ID came
	// without the names needed to verify it.
	ErrIncompleteVerificationParameters = errors.New("incomplete verification parameters")
)

// Error kinds reported by KindOf.
const (
	KindIdentityMismatch     = "identity_mismatch"
	KindInvalidParameters    = "invalid_parameters"
	KindAmbiguousDestination = "ambiguous_destination"
	KindIncompleteParameters = "incomplete_parameters"
	KindNotFound             = "not_found"
	KindServiceError         = "service_error"
	KindCanceled             = "canceled"
	KindUnknown              = "unknown"
)

// MismatchError reports one field whose authoritative value differs from
// the caller's expectation.
type MismatchError struct {
	Entity   string // task, project, section, comment, label
	Field    string // name, content, project_name, ...
	Subject  string // headline, e.g. "Project name mismatch for parent task"
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf(`%s. Expected: "%s", Actual: "%s"`, e.Subject, e.Expected, e.Actual)
}

// Is makes every MismatchError match ErrIdentityMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrIdentityMismatch
}

// ParameterError is a caller error detected before or between fetches.
// Kind is one of the parameter sentinels.
type ParameterError struct {
	Kind    error
	Message string
}

func (e *ParameterError) Error() string {
	return e.Message
}

func (e *ParameterError) Unwrap() error {
	return e.Kind
}

// NewParameterError returns a ParameterError of the given kind.
func NewParameterError(kind error, format string, args ...any) *ParameterError {
	return &ParameterError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf classifies err for metrics and logs.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIdentityMismatch):
		return KindIdentityMismatch
	case errors.Is(err, ErrInvalidVerificationParameters):
		return KindInvalidParameters
	case errors.Is(err, ErrAmbiguousDestination):
		return KindAmbiguousDestination
	case errors.Is(err, ErrIncompleteVerificationParameters):
		return KindIncompleteParameters
	case errors.Is(err, todoist.ErrNotFound):
		return KindNotFound
	case todoist.IsServiceError(err):
		return KindServiceError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}
