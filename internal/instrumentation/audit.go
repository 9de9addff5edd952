package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation captures one MCP tool call for the audit log.
//
// Mutating tools fill in Entity, Operation and TargetID so the log answers
// "which task was deleted, and did it pass verification first".
type ToolInvocation struct {
	Tool string

	// Target information
	Entity    string // task, project, section, comment, label
	Operation string // get, list, create, update, delete, close, reopen, move
	TargetID  string

	// Verified is set when the target passed identity verification.
	Verified bool

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	ErrorKind string

	// Tracing context
	TraceID string
	SpanID  string
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
// The target ID is only included when includeTargetID is set.
func (ti *ToolInvocation) LogAttrs(includeTargetID bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.Entity != "" {
		attrs = append(attrs, slog.String("entity", ti.Entity))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if includeTargetID && ti.TargetID != "" {
		attrs = append(attrs, slog.String("target_id", ti.TargetID))
	}
	if ti.Verified {
		attrs = append(attrs, slog.Bool("verified", true))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	if ti.ErrorKind != "" {
		attrs = append(attrs, slog.String("error_kind", ti.ErrorKind))
	}

	return attrs
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithTarget sets the entity kind, operation and target ID.
func (ti *ToolInvocation) WithTarget(entity, operation, id string) *ToolInvocation {
	ti.Entity = entity
	ti.Operation = operation
	ti.TargetID = id
	return ti
}

// WithVerified marks the target as verified.
func (ti *ToolInvocation) WithVerified(verified bool) *ToolInvocation {
	ti.Verified = verified
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// Complete marks the invocation as completed and calculates duration.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed. kind is the error
// taxonomy kind (identity_mismatch, ambiguous_destination, ...) or empty.
func (ti *ToolInvocation) CompleteWithError(err error, kind string) *ToolInvocation {
	ti.ErrorKind = kind
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// AuditLogger writes one structured record per tool invocation.
type AuditLogger struct {
	logger           *slog.Logger
	includeTargetIDs bool
	enabled          bool
}

// NewAuditLogger creates an enabled AuditLogger that omits target IDs.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:           logger,
		includeTargetIDs: config.IncludeTargetIDs,
		enabled:          config.Enabled,
	}
}

// SetIncludeTargetIDs sets whether target entity IDs are written.
func (al *AuditLogger) SetIncludeTargetIDs(include bool) {
	al.includeTargetIDs = include
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogToolInvocation logs a tool invocation at info level on success and
// warn level on failure.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	attrs := ti.LogAttrs(al.includeTargetIDs)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}
