package label_tools

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

// RegisterLabelTools registers all label tools with the MCP server.
func RegisterLabelTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getLabelTool := mcp.NewTool("get-label",
		mcp.WithDescription("Get a personal label"),
		labelIDParam(),
		labelNameParam(),
	)
	s.AddTool(getLabelTool, common.InstrumentedToolHandlerWithService("get-label", instrumentation.EntityLabel, "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetLabel(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	updateLabelTool := mcp.NewTool("update-label",
		mcp.WithDescription("Update a personal label. At least one change is required."),
		labelIDParam(),
		labelNameParam(),
		mcp.WithString("name", mcp.Description("New label name")),
		mcp.WithString("color", mcp.Description("New label color"), mcp.Enum(common.Colors...)),
		mcp.WithBoolean("isFavorite", mcp.Description("Whether the label is a favorite")),
		mcp.WithNumber("order", mcp.Description("Position of the label in the label list")),
	)
	s.AddTool(updateLabelTool, common.InstrumentedToolHandlerWithService("update-label", instrumentation.EntityLabel, "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateLabel(ctx, request, sc)
		}))

	deleteLabelTool := mcp.NewTool("delete-label",
		mcp.WithDescription("Delete a personal label. It is removed from every task that carries it."),
		labelIDParam(),
		labelNameParam(),
	)
	s.AddTool(deleteLabelTool, common.InstrumentedToolHandlerWithService("delete-label", instrumentation.EntityLabel, "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteLabel(ctx, request, sc)
		}))

	return nil
}

func labelIDParam() mcp.ToolOption {
	return mcp.WithString("labelId", mcp.Required(), mcp.Description("The ID of the label"))
}

func labelNameParam() mcp.ToolOption {
	return mcp.WithString("labelName", mcp.Required(), mcp.Description("Current label name for verification"))
}

func handleGetLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	v, err := common.RequiredStrings(request.GetArguments(), "labelId", "labelName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := sc.Verifier().Label(ctx, v[0], v[1])
	if err != nil {
		return common.ErrorResult(ctx, "get label", err), nil
	}
	return common.JSONResult(common.LabelMap(*res.Label)), nil
}

func handleUpdateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	v, err := common.RequiredStrings(args, "labelId", "labelName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	update := todoist.UpdateLabelArgs{
		Name:  common.OptionalString(args, "name"),
		Color: common.OptionalString(args, "color"),
	}
	if update.IsFavorite, err = common.OptionalBool(args, "isFavorite"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if update.Order, err = common.OptionalInt(args, "order"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if update.Empty() {
		return mcp.NewToolResultError("At least one of name, color, isFavorite or order must be provided"), nil
	}
	if err := common.OneOf("color", update.Color, common.Colors); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := sc.Verifier().Label(ctx, v[0], v[1]); err != nil {
		return common.ErrorResult(ctx, "update label", err), nil
	}
	label, err := sc.API().UpdateLabel(ctx, v[0], update)
	if err != nil {
		return common.ErrorResult(ctx, "update label", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Label %s updated to %s", label.ID, label.Name)), nil
}

func handleDeleteLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	v, err := common.RequiredStrings(request.GetArguments(), "labelId", "labelName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := sc.Verifier().Label(ctx, v[0], v[1]); err != nil {
		return common.ErrorResult(ctx, "delete label", err), nil
	}
	if err := sc.API().DeleteLabel(ctx, v[0]); err != nil {
		return common.ErrorResult(ctx, "delete label", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Label %s deleted", v[0])), nil
}
