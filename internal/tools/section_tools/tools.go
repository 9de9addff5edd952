package section_tools

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

// RegisterSectionTools registers all section tools with the MCP server.
func RegisterSectionTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getSectionsTool := mcp.NewTool("get-sections",
		mcp.WithDescription("Get all sections of a project"),
		mcp.WithString("projectId", mcp.Required(), mcp.Description("The ID of the project")),
		mcp.WithString("projectName", mcp.Required(), mcp.Description("Project name for verification")),
	)
	s.AddTool(getSectionsTool, common.InstrumentedToolHandlerWithService("get-sections", instrumentation.EntitySection, "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSections(ctx, request, sc)
		}))

	getSectionTool := mcp.NewTool("get-section",
		mcp.WithDescription("Get a section by its ID"),
		mcp.WithString("sectionId", mcp.Required(), mcp.Description("The ID of the section")),
		mcp.WithString("sectionName", mcp.Required(), mcp.Description("Section name for verification")),
		mcp.WithString("projectName", mcp.Required(), mcp.Description("Name of the section's project for verification")),
	)
	s.AddTool(getSectionTool, common.InstrumentedToolHandlerWithService("get-section", instrumentation.EntitySection, "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSection(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	addSectionTool := mcp.NewTool("add-section",
		mcp.WithDescription("Add a section to a project"),
		mcp.WithString("projectId", mcp.Required(), mcp.Description("The ID of the project")),
		mcp.WithString("projectName", mcp.Required(), mcp.Description("Project name for verification")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the new section")),
		mcp.WithNumber("order", mcp.Description("Position of the section within the project")),
	)
	s.AddTool(addSectionTool, common.InstrumentedToolHandlerWithService("add-section", instrumentation.EntitySection, "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddSection(ctx, request, sc)
		}))

	updateSectionTool := mcp.NewTool("update-section",
		mcp.WithDescription("Rename a section"),
		mcp.WithString("sectionId", mcp.Required(), mcp.Description("The ID of the section")),
		mcp.WithString("currentSectionName", mcp.Required(), mcp.Description("Current section name for verification")),
		mcp.WithString("projectName", mcp.Required(), mcp.Description("Name of the section's project for verification")),
		mcp.WithString("newName", mcp.Required(), mcp.Description("New section name")),
	)
	s.AddTool(updateSectionTool, common.InstrumentedToolHandlerWithService("update-section", instrumentation.EntitySection, "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateSection(ctx, request, sc)
		}))

	deleteSectionTool := mcp.NewTool("delete-section",
		mcp.WithDescription("Delete a section and the tasks in it"),
		mcp.WithString("sectionId", mcp.Required(), mcp.Description("The ID of the section")),
		mcp.WithString("sectionName", mcp.Required(), mcp.Description("Section name for verification")),
		mcp.WithString("projectName", mcp.Required(), mcp.Description("Name of the section's project for verification")),
	)
	s.AddTool(deleteSectionTool, common.InstrumentedToolHandlerWithService("delete-section", instrumentation.EntitySection, "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteSection(ctx, request, sc)
		}))

	return nil
}

func handleGetSections(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	v, err := common.RequiredStrings(request.GetArguments(), "projectId", "projectName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectID, projectName := v[0], v[1]

	if _, err := sc.Verifier().Project(ctx, projectID, projectName); err != nil {
		return common.ErrorResult(ctx, "get sections", err), nil
	}

	api := sc.API()
	sections, err := todoist.FetchAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Section], error) {
		return api.ListSections(ctx, projectID, cursor)
	})
	if err != nil {
		return common.ErrorResult(ctx, "get sections", err), nil
	}

	out := make([]map[string]any, 0, len(sections))
	for _, s := range sections {
		out = append(out, common.FilterFields(common.SectionMap(s), common.DefaultSectionFields))
	}
	return common.JSONResult(out), nil
}

func handleGetSection(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	v, err := common.RequiredStrings(request.GetArguments(), "sectionId", "sectionName", "projectName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := sc.Verifier().Section(ctx, v[0], v[1], v[2])
	if err != nil {
		return common.ErrorResult(ctx, "get section", err), nil
	}
	return common.JSONResult(common.SectionMap(*res.Section)), nil
}

func handleAddSection(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	v, err := common.RequiredStrings(args, "projectId", "projectName", "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	order, err := common.OptionalInt(args, "order")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := sc.Verifier().Project(ctx, v[0], v[1]); err != nil {
		return common.ErrorResult(ctx, "add section", err), nil
	}

	section, err := sc.API().AddSection(ctx, todoist.AddSectionArgs{ProjectID: v[0], Name: v[2], Order: order})
	if err != nil {
		return common.ErrorResult(ctx, "add section", err), nil
	}
	return common.JSONResult(common.SectionMap(*section)), nil
}

func handleUpdateSection(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	v, err := common.RequiredStrings(request.GetArguments(), "sectionId", "currentSectionName", "projectName", "newName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sectionID, newName := v[0], v[3]

	res, err := sc.Verifier().Section(ctx, sectionID, v[1], v[2])
	if err != nil {
		return common.ErrorResult(ctx, "update section", err), nil
	}
	if _, err := sc.API().UpdateSection(ctx, sectionID, newName); err != nil {
		return common.ErrorResult(ctx, "update section", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`Section "%s" renamed to "%s" in project "%s"`,
		res.Section.Name, newName, res.Project.Name)), nil
}

func handleDeleteSection(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	v, err := common.RequiredStrings(request.GetArguments(), "sectionId", "sectionName", "projectName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := sc.Verifier().Section(ctx, v[0], v[1], v[2])
	if err != nil {
		return common.ErrorResult(ctx, "delete section", err), nil
	}
	if err := sc.API().DeleteSection(ctx, v[0]); err != nil {
		return common.ErrorResult(ctx, "delete section", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`Section "%s" deleted from project "%s"`,
		res.Section.Name, res.Project.Name)), nil
}
