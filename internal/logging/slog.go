package logging

import (
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyEntity    = "entity"
	KeyEntityID  = "entity_id"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyErrorKind = "error_kind"
	KeyTool      = "tool"
)

// Status values for consistent logging.
// Duplicated from the instrumentation package, which imports this one.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// NewLogger returns a text logger writing to w. Debug enables debug level.
// The MCP stdio transport owns stdout, so callers pass os.Stderr.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithEntity returns a logger with the entity kind and ID set.
func WithEntity(logger *slog.Logger, entity, id string) *slog.Logger {
	return logger.With(Entity(entity, id)...)
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Entity returns the entity kind attribute, plus the ID attribute when id is set.
func Entity(entity, id string) []any {
	attrs := []any{slog.String(KeyEntity, entity)}
	if id != "" {
		attrs = append(attrs, slog.String(KeyEntityID, id))
	}
	return attrs
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// ErrorKind returns a slog attribute for an error taxonomy kind.
func ErrorKind(kind string) slog.Attr {
	return slog.String(KeyErrorKind, kind)
}

// Err returns a slog attribute for an error.
// If err is nil, it returns an empty Group that slog omits from output.
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizeToken returns a masked version of a token for logging.
// Only the length is shown; even a prefix of an API token is a leak.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// Truncate shortens s to at most n runes, marking the cut with "...".
// Task content and comments are user text and can be arbitrarily long.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
