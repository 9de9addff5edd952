// Package instrumentation provides OpenTelemetry instrumentation for the
// todoistguard MCP server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Todoist API Metrics:
//   - todoist_api_operations_total: Counter of API calls by operation and status
//   - todoist_api_operation_duration_seconds: Histogram of API call durations, retries included
//
// Guard Metrics:
//   - verification_checks_total: Counter of identity checks by entity, result and error kind
//   - bulk_items_total: Counter of bulk tool items by tool and status
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// Label values come from small fixed sets. Entity IDs are never used as
// metric labels; they only appear on spans and, when enabled, in audit logs.
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and Todoist API
// calls (todoist.<operation>).
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: todoistguard)
//   - AUDIT_LOGGING_INCLUDE_TARGET_IDS: write entity IDs into audit records
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "todoistguard",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	m := provider.Metrics()
//	m.RecordAPIOperation(ctx, "get task", instrumentation.StatusSuccess, time.Since(start))
//	m.RecordVerification(ctx, instrumentation.EntityTask, instrumentation.VerificationMismatch, "identity_mismatch")
package instrumentation
