package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/todoistguard/internal/instrumentation"
	"github.com/teemow/todoistguard/internal/server"
	"github.com/teemow/todoistguard/internal/verify"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// targetKeys are the arguments that identify a tool's target, most specific first.
var targetKeys = []string{"taskId", "commentId", "sectionId", "labelId", "projectId", "parentId"}

// InstrumentedToolHandlerWithService wraps a tool handler with tracing,
// metrics and audit logging. entity and operation describe what the tool acts
// on, e.g. "task" and "delete".
//
// Handlers report failures through ErrorResult so that the audit record
// carries the error kind (identity_mismatch, not_found, ...).
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandlerWithService("delete-task", "task", "delete", sc, handler))
func InstrumentedToolHandlerWithService(
	toolName string,
	entity string,
	operation string,
	sc *server.ServerContext,
	handler ToolHandler,
) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			instrumentation.NewSpanAttributeBuilder().
				WithOperation(operation).
				WithEntity(entity, "").
				Build()...)
		defer span.End()

		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		out := &outcome{}
		ctx = context.WithValue(ctx, outcomeKey{}, out)

		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithTarget(entity, operation, targetID(request.GetArguments()))

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err, verify.KindOf(err))
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			failure := out.get()
			if failure == nil {
				failure = errors.New(resultText(result))
			}
			invocation.CompleteWithError(failure, verify.KindOf(out.get()))
			instrumentation.SetSpanError(span, failure)
		default:
			invocation.WithVerified(operation != "get" && operation != "list")
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		if metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, duration)
		}
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}

func targetID(args map[string]any) string {
	for _, key := range targetKeys {
		if id, ok := args[key].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return "tool returned an error"
}
