package task_tools

import (
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoistguard/internal/priority"
	"github.com/teemow/todoistguard/internal/server"
	"github.com/teemow/todoistguard/internal/tools/batch"
)

// MaxTasksPerPage bounds the tasksPerPage argument of get-tasks.
const MaxTasksPerPage = 200

// RegisterTaskTools registers all task tools with the MCP server.
func RegisterTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerReadTools(s, sc); err != nil {
		return fmt.Errorf("failed to register task read tools: %w", err)
	}
	if readOnly {
		return nil
	}
	if err := registerWriteTools(s, sc); err != nil {
		return fmt.Errorf("failed to register task write tools: %w", err)
	}
	if err := registerBulkTools(s, sc); err != nil {
		return fmt.Errorf("failed to register bulk task tools: %w", err)
	}
	return nil
}

func taskVerificationOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task"),
		),
		mcp.WithString("taskName",
			mcp.Required(),
			mcp.Description("Task content/name for verification"),
		),
		mcp.WithString("projectName",
			mcp.Required(),
			mcp.Description("Project name for verification"),
		),
	}
}

func taskVerificationsParam(description string) mcp.ToolOption {
	schema := batch.TaskVerificationsSchema()
	return mcp.WithArray("taskVerifications",
		mcp.Required(),
		mcp.Description(description),
		mcp.Items(schema["items"]),
	)
}

// parsePriority accepts 1..4, a numeric string or a category name.
func parsePriority(v any) (int, error) {
	if s, ok := v.(string); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return priority.ParseArgument(n)
		}
	}
	return priority.ParseArgument(v)
}
