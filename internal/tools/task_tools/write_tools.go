package task_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoistguard/internal/instrumentation"
	"github.com/teemow/todoistguard/internal/priority"
	"github.com/teemow/todoistguard/internal/server"
	"github.com/teemow/todoistguard/internal/todoist"
	"github.com/teemow/todoistguard/internal/tools/common"
)

var durationUnits = []string{"minute", "day"}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	addTaskTool := mcp.NewTool("add-task",
		mcp.WithDescription("Add a task to Todoist"),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Task content"),
		),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithString("projectId", mcp.Description("The ID of a project to add the task to")),
		mcp.WithString("projectName", mcp.Description("Project name for verification")),
		mcp.WithString("parentId", mcp.Description("The ID of a parent task")),
		mcp.WithString("parentTaskName", mcp.Description("Parent task name for verification (requires projectName)")),
		mcp.WithString("assigneeId", mcp.Description("The ID of a project collaborator to assign the task to")),
		mcp.WithString("priority", mcp.Description(priority.Description()+", or Urgent/High/Medium/Low")),
		mcp.WithArray("labels",
			mcp.Description("Label names"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("dueString", mcp.Description(`Natural language due date like "tomorrow at 3pm"`)),
		mcp.WithString("dueLang", mcp.Description("2-letter language code of the due date")),
		mcp.WithString("dueDate", mcp.Description("Due date in YYYY-MM-DD format relative to the user's timezone")),
		mcp.WithString("dueDatetime", mcp.Description(`Full ISO datetime like "2023-12-31T15:00:00Z"`)),
		mcp.WithString("deadlineDate", mcp.Description("Deadline in YYYY-MM-DD format relative to the user's timezone")),
		mcp.WithString("deadlineLang", mcp.Description("2-letter language code of the deadline")),
		mcp.WithNumber("duration", mcp.Description("Duration of the task (requires durationUnit)")),
		mcp.WithString("durationUnit",
			mcp.Description("Unit of the task duration (requires duration)"),
			mcp.Enum(durationUnits...),
		),
	)
	s.AddTool(addTaskTool, common.InstrumentedToolHandlerWithService("add-task", instrumentation.EntityTask, "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddTask(ctx, request, sc)
		}))

	quickAddTool := mcp.NewTool("quick-add-task",
		mcp.WithDescription("Quickly add a task using natural language"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description(`Task text with natural language parsing (e.g. "Call mom tomorrow at 5pm #personal @phone")`),
		),
		mcp.WithString("note", mcp.Description("Additional note for the task")),
		mcp.WithString("reminder", mcp.Description("When to be reminded of this task in natural language")),
		mcp.WithBoolean("autoReminder",
			mcp.Description("Add the default reminder for tasks with due times"),
			mcp.DefaultBool(false),
		),
		mcp.WithString("projectName", mcp.Description("Project name the task is expected to land in")),
	)
	s.AddTool(quickAddTool, common.InstrumentedToolHandlerWithService("quick-add-task", instrumentation.EntityTask, "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQuickAddTask(ctx, request, sc)
		}))

	for _, action := range taskActions {
		action := action
		tool := mcp.NewTool(action.tool,
			append([]mcp.ToolOption{mcp.WithDescription(action.description)}, taskVerificationOptions()...)...,
		)
		s.AddTool(tool, common.InstrumentedToolHandlerWithService(action.tool, instrumentation.EntityTask, action.operation, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleTaskAction(ctx, request, sc, action)
			}))
	}

	return nil
}

// taskAction is a verify-then-act tool on a single task.
type taskAction struct {
	tool        string
	description string
	operation   string
	verb        string // past tense used in the result
	preposition string // "in" or "from"
	apply       func(ctx context.Context, api todoist.API, id string) error
}

var taskActions = []taskAction{
	{
		tool:        "close-task",
		description: "Close (complete) a task in Todoist",
		operation:   "close",
		verb:        "closed",
		preposition: "in",
		apply:       func(ctx context.Context, api todoist.API, id string) error { return api.CloseTask(ctx, id) },
	},
	{
		tool:        "reopen-task",
		description: "Reopen a completed task in Todoist",
		operation:   "reopen",
		verb:        "reopened",
		preposition: "in",
		apply:       func(ctx context.Context, api todoist.API, id string) error { return api.ReopenTask(ctx, id) },
	},
	{
		tool:        "delete-task",
		description: "Delete a task from Todoist",
		operation:   "delete",
		verb:        "deleted",
		preposition: "from",
		apply:       func(ctx context.Context, api todoist.API, id string) error { return api.DeleteTask(ctx, id) },
	},
}

func handleTaskAction(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, action taskAction) (*mcp.CallToolResult, error) {
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

	opName := action.operation + " task"
	res, err := sc.Verifier().Task(ctx, taskID, taskName, projectName)
	if err != nil {
		return common.ErrorResult(ctx, opName, err), nil
	}
	if err := action.apply(ctx, sc.API(), taskID); err != nil {
		return common.ErrorResult(ctx, opName, err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(`Task "%s" %s %s project "%s"`,
		res.Task.Content, action.verb, action.preposition, res.Project.Name)), nil
}

func handleAddTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	content, err := common.RequiredString(args, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	labels, err := common.OptionalStringSlice(args, "labels")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	duration, err := common.OptionalInt(args, "duration")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	taskArgs := todoist.AddTaskArgs{
		Content:      content,
		Description:  common.OptionalString(args, "description"),
		ProjectID:    common.OptionalString(args, "projectId"),
		ParentID:     common.OptionalString(args, "parentId"),
		AssigneeID:   common.OptionalString(args, "assigneeId"),
		Labels:       labels,
		DueString:    common.OptionalString(args, "dueString"),
		DueLang:      common.OptionalString(args, "dueLang"),
		DueDate:      common.OptionalString(args, "dueDate"),
		DueDatetime:  common.OptionalString(args, "dueDatetime"),
		DeadlineDate: common.OptionalString(args, "deadlineDate"),
		DeadlineLang: common.OptionalString(args, "deadlineLang"),
		DurationUnit: common.OptionalString(args, "durationUnit"),
	}
	projectName := common.OptionalString(args, "projectName")
	parentTaskName := common.OptionalString(args, "parentTaskName")

	if taskArgs.DueDate != "" && taskArgs.DueDatetime != "" {
		return mcp.NewToolResultError("Cannot provide both dueDate and dueDatetime"), nil
	}
	hasDuration := duration != nil && *duration != 0
	if hasDuration != (taskArgs.DurationUnit != "") {
		return mcp.NewToolResultError("Must provide both duration and durationUnit, or neither"), nil
	}
	if err := common.OneOf("durationUnit", taskArgs.DurationUnit, durationUnits); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if hasDuration {
		if *duration < 0 {
			return mcp.NewToolResultError("duration must be positive"), nil
		}
		taskArgs.Duration = *duration
	}
	if raw, ok := args["priority"]; ok && raw != nil {
		p, err := parsePriority(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		taskArgs.Priority = p
	}
	if taskArgs.ParentID != "" && parentTaskName != "" && projectName == "" {
		return mcp.NewToolResultError("projectName is required when parentTaskName is provided"), nil
	}

	if taskArgs.ProjectID != "" && projectName != "" {
		if _, err := sc.Verifier().Project(ctx, taskArgs.ProjectID, projectName); err != nil {
			return common.ErrorResult(ctx, "add task", err), nil
		}
	}
	if taskArgs.ParentID != "" && parentTaskName != "" {
		if _, err := sc.Verifier().ParentTask(ctx, taskArgs.ParentID, parentTaskName, projectName); err != nil {
			return common.ErrorResult(ctx, "add task", err), nil
		}
	}

	task, err := sc.API().AddTask(ctx, taskArgs)
	if err != nil {
		return common.ErrorResult(ctx, "add task", err), nil
	}

	return common.JSONResult(common.PresentTask(*task, common.DefaultTaskFields)), nil
}

func handleQuickAddTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	text, err := common.RequiredString(args, "text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	autoReminder, err := common.OptionalBool(args, "autoReminder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	quickArgs := todoist.QuickAddArgs{
		Text:     text,
		Note:     common.OptionalString(args, "note"),
		Reminder: common.OptionalString(args, "reminder"),
	}
	if autoReminder != nil {
		quickArgs.AutoReminder = *autoReminder
	}

	task, err := sc.API().QuickAddTask(ctx, quickArgs)
	if err != nil {
		return common.ErrorResult(ctx, "quick add task", err), nil
	}

	if expected := common.OptionalString(args, "projectName"); expected != "" {
		project, err := sc.API().GetProject(ctx, task.ProjectID)
		if err != nil {
			return common.ErrorResult(ctx, "quick add task", err), nil
		}
		if project.Name != expected {
			return mcp.NewToolResultError(fmt.Sprintf(`Task was created in project "%s" but expected "%s"`, project.Name, expected)), nil
		}
	}

	return common.JSONResult(common.PresentTask(*task, nil)), nil
}
