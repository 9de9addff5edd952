package instrumentation

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const (
	testToolDelete = "delete-task"
	testTaskID     = "6X7rM8997g3RQmvh"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testToolDelete)

	if ti.Tool != testToolDelete {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolDelete)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusSuccess)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testToolDelete).WithTarget(EntityTask, OperationDelete, testTaskID)

	ti.CompleteWithError(errors.New(`Task name mismatch. Expected: "Buy milk", Actual: "Buy bread"`), "identity_mismatch")

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.ErrorKind != "identity_mismatch" {
		t.Errorf("ErrorKind = %q, want identity_mismatch", ti.ErrorKind)
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusError)
	}
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolDelete).
		WithTarget(EntityTask, OperationDelete, testTaskID).
		WithVerified(true)
	ti.TraceID = "abc123"
	ti.CompleteSuccess()

	keys := func(attrs []slog.Attr) map[string]bool {
		m := make(map[string]bool)
		for _, a := range attrs {
			m[a.Key] = true
		}
		return m
	}

	without := keys(ti.LogAttrs(false))
	for _, k := range []string{"tool", "duration", "success", "entity", "operation", "verified", "trace_id"} {
		if !without[k] {
			t.Errorf("expected attribute %q", k)
		}
	}
	if without["target_id"] {
		t.Error("target_id should be omitted unless requested")
	}

	if !keys(ti.LogAttrs(true))["target_id"] {
		t.Error("target_id should be present when requested")
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(newBufferLogger(&buf))

	ti := NewToolInvocation(testToolDelete).WithTarget(EntityTask, OperationDelete, testTaskID)
	ti.CompleteSuccess()
	al.LogToolInvocation(ti)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON log line: %v", err)
	}
	if record["msg"] != "tool_executed" {
		t.Errorf("msg = %v, want tool_executed", record["msg"])
	}
	if record["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", record["level"])
	}
	if _, ok := record["target_id"]; ok {
		t.Error("target_id should not be logged by default")
	}
}

func TestAuditLogger_FailureLogsWarn(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(newBufferLogger(&buf), AuditLoggingConfig{Enabled: true, IncludeTargetIDs: true})

	ti := NewToolInvocation(testToolDelete).WithTarget(EntityTask, OperationDelete, testTaskID)
	ti.CompleteWithError(errors.New("not found"), "")
	al.LogToolInvocation(ti)

	out := buf.String()
	if !strings.Contains(out, `"msg":"tool_failed"`) {
		t.Errorf("expected tool_failed record, got %s", out)
	}
	if !strings.Contains(out, `"level":"WARN"`) {
		t.Errorf("expected WARN level, got %s", out)
	}
	if !strings.Contains(out, testTaskID) {
		t.Errorf("expected target id in record, got %s", out)
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(newBufferLogger(&buf), AuditLoggingConfig{Enabled: false})

	al.LogToolInvocation(NewToolInvocation(testToolDelete).CompleteSuccess())

	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %s", buf.String())
	}

	al.SetEnabled(true)
	al.LogToolInvocation(NewToolInvocation(testToolDelete).CompleteSuccess())
	if buf.Len() == 0 {
		t.Error("expected output after enabling")
	}
}

func TestAuditLogger_Nil(t *testing.T) {
	var al *AuditLogger
	// Should not panic
	al.LogToolInvocation(NewToolInvocation(testToolDelete).CompleteSuccess())
}
