package task_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoistguard/internal/instrumentation"
	"github.com/teemow/todoistguard/internal/server"
	"github.com/teemow/todoistguard/internal/todoist"
	"github.com/teemow/todoistguard/internal/tools/common"
)

const filterDescription = `Get all tasks from Todoist using a filter.

Filters narrow down tasks by name, date, project, label, priority, creation date and more.

Common filter examples:
- Basic: "today", "overdue", "p1" (priority 1), "#Work" (project), "@email" (label)
- Search: "search: Meeting"
- Dates: "date: Jan 3", "due before: May 5", "created: today"
- Advanced: "today & @email", "#Work & !assigned to: others", "p1 & 7 days"

Filter reference: https://todoist.com/help/articles/introduction-to-filters`

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getTaskTool := mcp.NewTool("get-task",
		append([]mcp.ToolOption{mcp.WithDescription("Retrieve a task by its ID after verifying its content and project")},
			taskVerificationOptions()...)...,
	)
	s.AddTool(getTaskTool, common.InstrumentedToolHandlerWithService("get-task", instrumentation.EntityTask, "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetTask(ctx, request, sc)
		}))

	getTasksTool := mcp.NewTool("get-tasks",
		mcp.WithDescription("Get the tasks of a project"),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project"),
		),
		mcp.WithString("projectName",
			mcp.Required(),
			mcp.Description("Project name for verification"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number (1-based, requires tasksPerPage)"),
			mcp.Min(1),
		),
		mcp.WithNumber("tasksPerPage",
			mcp.Description("Number of tasks per page (1-200, requires page)"),
			mcp.Min(1),
			mcp.Max(MaxTasksPerPage),
		),
		mcp.WithArray("fields",
			mcp.Description(`Fields to include in the response (e.g. ["id", "content", "due", "priority"]). All fields when omitted.`),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.AddTool(getTasksTool, common.InstrumentedToolHandlerWithService("get-tasks", instrumentation.EntityTask, "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetTasks(ctx, request, sc)
		}))

	filterTool := mcp.NewTool("get-tasks-by-filter",
		mcp.WithDescription(filterDescription),
		mcp.WithString("filter",
			mcp.Required(),
			mcp.Description("Todoist filter query"),
		),
	)
	s.AddTool(filterTool, common.InstrumentedToolHandlerWithService("get-tasks-by-filter", instrumentation.EntityTask, "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetTasksByFilter(ctx, request, sc)
		}))

	return nil
}

func handleGetTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	taskID, err := common.RequiredString(args, "taskId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	taskName, err := common.RequiredString(args, "taskName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectName, err := common.RequiredString(args, "projectName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := sc.Verifier().Task(ctx, taskID, taskName, projectName)
	if err != nil {
		return common.ErrorResult(ctx, "get task", err), nil
	}

	return common.JSONResult(common.PresentTask(*res.Task, common.DefaultTaskFields)), nil
}

func handleGetTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	projectID, err := common.RequiredString(args, "projectId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectName, err := common.RequiredString(args, "projectName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := common.OptionalInt(args, "page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	perPage, err := common.OptionalInt(args, "tasksPerPage")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := common.OptionalStringSlice(args, "fields")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch {
	case page != nil && perPage == nil:
		return mcp.NewToolResultError("tasksPerPage is required when page is specified"), nil
	case page == nil && perPage != nil:
		return mcp.NewToolResultError("page is required when tasksPerPage is specified"), nil
	case page != nil && *page < 1:
		return mcp.NewToolResultError("page must be at least 1"), nil
	case perPage != nil && (*perPage < 1 || *perPage > MaxTasksPerPage):
		return mcp.NewToolResultError(fmt.Sprintf("tasksPerPage must be between 1 and %d", MaxTasksPerPage)), nil
	}

	if _, err := sc.Verifier().Project(ctx, projectID, projectName); err != nil {
		return common.ErrorResult(ctx, "get tasks", err), nil
	}

	api := sc.API()
	var tasks []todoist.Task
	if page != nil {
		tasks, err = firstPageSlice(ctx, api, projectID, *page, *perPage)
	} else {
		tasks, err = todoist.FetchAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Task], error) {
			return api.ListTasks(ctx, projectID, cursor, 0)
		})
	}
	if err != nil {
		return common.ErrorResult(ctx, "get tasks", err), nil
	}

	return common.JSONResult(common.PresentTasks(tasks, fields)), nil
}

// firstPageSlice pages within the first API page only. The page is asked for
// as many tasks as the requested window needs, up to the API maximum.
func firstPageSlice(ctx context.Context, api todoist.API, projectID string, page, perPage int) ([]todoist.Task, error) {
	limit := page * perPage
	if limit > MaxTasksPerPage {
		limit = MaxTasksPerPage
	}
	first, err := api.ListTasks(ctx, projectID, "", limit)
	if err != nil {
		return nil, err
	}

	start := (page - 1) * perPage
	if start >= len(first.Results) {
		return []todoist.Task{}, nil
	}
	end := start + perPage
	if end > len(first.Results) {
		end = len(first.Results)
	}
	return first.Results[start:end], nil
}

func handleGetTasksByFilter(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	filter, err := common.RequiredString(args, "filter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	api := sc.API()
	tasks, err := todoist.FetchAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Task], error) {
		return api.FilterTasks(ctx, filter, cursor)
	})
	if err != nil {
		return common.ErrorResult(ctx, "get tasks by filter", err), nil
	}

	return common.JSONResult(common.PresentTasks(tasks, nil)), nil
}
