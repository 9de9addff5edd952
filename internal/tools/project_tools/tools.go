package project_tools

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

// RegisterProjectTools registers all project tools with the MCP server.
func RegisterProjectTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getProjectsTool := mcp.NewTool("get-projects",
		mcp.WithDescription("Get all projects from Todoist"),
	)
	s.AddTool(getProjectsTool, common.InstrumentedToolHandlerWithService("get-projects", instrumentation.EntityProject, "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetProjects(ctx, request, sc)
		}))

	getProjectTool := mcp.NewTool("get-project",
		mcp.WithDescription("Get a project from Todoist"),
		projectIDParam(),
		projectNameParam(),
	)
	s.AddTool(getProjectTool, common.InstrumentedToolHandlerWithService("get-project", instrumentation.EntityProject, "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetProject(ctx, request, sc)
		}))

	collaboratorsTool := mcp.NewTool("get-project-collaborators",
		mcp.WithDescription("Get all collaborators of a shared project"),
		projectIDParam(),
		projectNameParam(),
	)
	s.AddTool(collaboratorsTool, common.InstrumentedToolHandlerWithService("get-project-collaborators", instrumentation.EntityProject, "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetProjectCollaborators(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	addProjectTool := mcp.NewTool("add-project",
		mcp.WithDescription("Add a project to Todoist"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the new project"),
		),
		colorParam(),
		mcp.WithBoolean("isFavorite", mcp.Description("Whether the project is a favorite")),
		viewStyleParam(),
		mcp.WithString("parentId", mcp.Description("The ID of a parent project")),
		mcp.WithString("parentProjectName", mcp.Description("Parent project name for verification")),
	)
	s.AddTool(addProjectTool, common.InstrumentedToolHandlerWithService("add-project", instrumentation.EntityProject, "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddProject(ctx, request, sc)
		}))

	updateProjectTool := mcp.NewTool("update-project",
		mcp.WithDescription("Update a project in Todoist. At least one of name, color, isFavorite or viewStyle is required."),
		projectIDParam(),
		projectNameParam(),
		mcp.WithString("name", mcp.Description("New project name")),
		colorParam(),
		mcp.WithBoolean("isFavorite", mcp.Description("Whether the project is a favorite")),
		viewStyleParam(),
	)
	s.AddTool(updateProjectTool, common.InstrumentedToolHandlerWithService("update-project", instrumentation.EntityProject, "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateProject(ctx, request, sc)
		}))

	deleteProjectTool := mcp.NewTool("delete-project",
		mcp.WithDescription("Delete a project in Todoist"),
		projectIDParam(),
		projectNameParam(),
	)
	s.AddTool(deleteProjectTool, common.InstrumentedToolHandlerWithService("delete-project", instrumentation.EntityProject, "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteProject(ctx, request, sc)
		}))

	return nil
}

func projectIDParam() mcp.ToolOption {
	return mcp.WithString("projectId",
		mcp.Required(),
		mcp.Description("The ID of the project"),
	)
}

func projectNameParam() mcp.ToolOption {
	return mcp.WithString("projectName",
		mcp.Required(),
		mcp.Description("Project name for verification"),
	)
}

func colorParam() mcp.ToolOption {
	return mcp.WithString("color",
		mcp.Description("Project color"),
		mcp.Enum(common.Colors...),
	)
}

func viewStyleParam() mcp.ToolOption {
	return mcp.WithString("viewStyle",
		mcp.Description("Project layout"),
		mcp.Enum(common.ViewStyles...),
	)
}

func handleGetProjects(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	api := sc.API()
	projects, err := todoist.FetchAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Project], error) {
		return api.ListProjects(ctx, cursor)
	})
	if err != nil {
		return common.ErrorResult(ctx, "get projects", err), nil
	}

	out := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		out = append(out, common.FilterFields(common.ProjectMap(p), common.DefaultProjectFields))
	}
	return common.JSONResult(out), nil
}

func handleGetProject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	projectID, err := common.RequiredString(args, "projectId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectName, err := common.RequiredString(args, "projectName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := sc.Verifier().Project(ctx, projectID, projectName)
	if err != nil {
		return common.ErrorResult(ctx, "get project", err), nil
	}
	return common.JSONResult(common.ProjectMap(*res.Project)), nil
}

func handleGetProjectCollaborators(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	projectID, err := common.RequiredString(args, "projectId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectName, err := common.RequiredString(args, "projectName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := sc.Verifier().Project(ctx, projectID, projectName); err != nil {
		return common.ErrorResult(ctx, "get project collaborators", err), nil
	}

	api := sc.API()
	collaborators, err := todoist.FetchAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Collaborator], error) {
		return api.ListCollaborators(ctx, projectID, cursor)
	})
	if err != nil {
		return common.ErrorResult(ctx, "get project collaborators", err), nil
	}

	out := make([]map[string]any, 0, len(collaborators))
	for _, c := range collaborators {
		out = append(out, common.CollaboratorMap(c))
	}
	return common.JSONResult(out), nil
}

func handleAddProject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	isFavorite, err := common.OptionalBool(args, "isFavorite")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	projectArgs := todoist.AddProjectArgs{
		Name:       name,
		Color:      common.OptionalString(args, "color"),
		ParentID:   common.OptionalString(args, "parentId"),
		IsFavorite: isFavorite,
		ViewStyle:  common.OptionalString(args, "viewStyle"),
	}
	if err := common.OneOf("color", projectArgs.Color, common.Colors); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := common.OneOf("viewStyle", projectArgs.ViewStyle, common.ViewStyles); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if parentName := common.OptionalString(args, "parentProjectName"); projectArgs.ParentID != "" && parentName != "" {
		if _, err := sc.Verifier().ParentProject(ctx, projectArgs.ParentID, parentName); err != nil {
			return common.ErrorResult(ctx, "add project", err), nil
		}
	}

	project, err := sc.API().AddProject(ctx, projectArgs)
	if err != nil {
		return common.ErrorResult(ctx, "add project", err), nil
	}
	return common.JSONResult(common.ProjectMap(*project)), nil
}

func handleUpdateProject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	projectID, err := common.RequiredString(args, "projectId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectName, err := common.RequiredString(args, "projectName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	isFavorite, err := common.OptionalBool(args, "isFavorite")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	update := todoist.UpdateProjectArgs{
		Name:       common.OptionalString(args, "name"),
		Color:      common.OptionalString(args, "color"),
		IsFavorite: isFavorite,
		ViewStyle:  common.OptionalString(args, "viewStyle"),
	}
	if update.Empty() {
		return mcp.NewToolResultError("At least one of name, color, isFavorite or viewStyle must be provided"), nil
	}
	if err := common.OneOf("color", update.Color, common.Colors); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := common.OneOf("viewStyle", update.ViewStyle, common.ViewStyles); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := sc.Verifier().Project(ctx, projectID, projectName); err != nil {
		return common.ErrorResult(ctx, "update project", err), nil
	}

	project, err := sc.API().UpdateProject(ctx, projectID, update)
	if err != nil {
		return common.ErrorResult(ctx, "update project", err), nil
	}
	return common.JSONResult(common.ProjectMap(*project)), nil
}

func handleDeleteProject(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	projectID, err := common.RequiredString(args, "projectId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectName, err := common.RequiredString(args, "projectName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := sc.Verifier().Project(ctx, projectID, projectName)
	if err != nil {
		return common.ErrorResult(ctx, "delete project", err), nil
	}
	if err := sc.API().DeleteProject(ctx, projectID); err != nil {
		return common.ErrorResult(ctx, "delete project", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`Project "%s" deleted`, res.Project.Name)), nil
}
