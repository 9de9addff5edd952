package comment_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoistguard/internal/instrumentation"
	"github.com/teemow/todoistguard/internal/server"
	"github.com/teemow/todoistguard/internal/todoist"
	"github.com/teemow/todoistguard/internal/tools/common"
	"github.com/teemow/todoistguard/internal/verify"
)

// RegisterCommentTools registers all comment tools with the MCP server.
func RegisterCommentTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getCommentTool := mcp.NewTool("get-comment",
		mcp.WithDescription("Get a comment from a task or project"),
		mcp.WithString("commentId", mcp.Required(), mcp.Description("The ID of the comment")),
		mcp.WithString("commentContent", mcp.Required(), mcp.Description("First 50 characters of the comment content for verification")),
		taskNameParam(),
		projectNameParam(),
	)
	s.AddTool(getCommentTool, common.InstrumentedToolHandlerWithService("get-comment", instrumentation.EntityComment, "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetComment(ctx, request, sc)
		}))

	taskCommentsTool := mcp.NewTool("get-task-comments",
		mcp.WithDescription("Get the comments of a task"),
		mcp.WithString("taskId", mcp.Required(), mcp.Description("The ID of the task")),
		mcp.WithString("taskName", mcp.Required(), mcp.Description("Task content/name for verification")),
		mcp.WithString("projectName", mcp.Required(), mcp.Description("Project name for verification")),
	)
	s.AddTool(taskCommentsTool, common.InstrumentedToolHandlerWithService("get-task-comments", instrumentation.EntityComment, "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetTaskComments(ctx, request, sc)
		}))

	projectCommentsTool := mcp.NewTool("get-project-comments",
		mcp.WithDescription("Get the comments of a project"),
		mcp.WithString("projectId", mcp.Required(), mcp.Description("The ID of the project")),
		mcp.WithString("projectName", mcp.Required(), mcp.Description("Project name for verification")),
	)
	s.AddTool(projectCommentsTool, common.InstrumentedToolHandlerWithService("get-project-comments", instrumentation.EntityComment, "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetProjectComments(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	addCommentTool := mcp.NewTool("add-comment",
		mcp.WithDescription("Add a comment to a task or a project. Give exactly one of taskId or projectId."),
		mcp.WithString("taskId", mcp.Description("Task ID to add the comment to")),
		mcp.WithString("taskName", mcp.Description("Task name for verification, required with taskId")),
		mcp.WithString("projectId", mcp.Description("Project ID to add the comment to")),
		mcp.WithString("projectName", mcp.Description("Project name for verification, always required")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Comment content")),
		mcp.WithObject("attachment",
			mcp.Description("File attached to the comment"),
			mcp.Properties(map[string]any{
				"fileName":     map[string]any{"type": "string"},
				"fileUrl":      map[string]any{"type": "string"},
				"fileType":     map[string]any{"type": "string"},
				"resourceType": map[string]any{"type": "string"},
			}),
		),
	)
	s.AddTool(addCommentTool, common.InstrumentedToolHandlerWithService("add-comment", instrumentation.EntityComment, "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddComment(ctx, request, sc)
		}))

	updateCommentTool := mcp.NewTool("update-comment",
		mcp.WithDescription("Update the content of a comment"),
		mcp.WithString("commentId", mcp.Required(), mcp.Description("The ID of the comment to update")),
		mcp.WithString("currentCommentContent", mcp.Required(), mcp.Description("First 50 characters of the current comment content for verification")),
		taskNameParam(),
		projectNameParam(),
		mcp.WithString("newContent", mcp.Required(), mcp.Description("The new content of the comment")),
	)
	s.AddTool(updateCommentTool, common.InstrumentedToolHandlerWithService("update-comment", instrumentation.EntityComment, "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateComment(ctx, request, sc)
		}))

	deleteCommentTool := mcp.NewTool("delete-comment",
		mcp.WithDescription("Delete a comment from a task or project"),
		mcp.WithString("commentId", mcp.Required(), mcp.Description("The ID of the comment")),
		mcp.WithString("commentContent", mcp.Required(), mcp.Description("First 50 characters of the comment content for verification")),
		taskNameParam(),
		projectNameParam(),
	)
	s.AddTool(deleteCommentTool, common.InstrumentedToolHandlerWithService("delete-comment", instrumentation.EntityComment, "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteComment(ctx, request, sc)
		}))

	return nil
}

func taskNameParam() mcp.ToolOption {
	return mcp.WithString("taskName", mcp.Description("Task name, when the comment is on a task"))
}

func projectNameParam() mcp.ToolOption {
	return mcp.WithString("projectName", mcp.Description("Name of the project the comment (or its task) belongs to"))
}

// contextDescription names where a verified comment lives.
func contextDescription(res *verify.CommentResult) string {
	if res.Task != nil {
		return fmt.Sprintf(`on task "%s" in project "%s"`, res.Task.Content, res.Project.Name)
	}
	return fmt.Sprintf(`on project "%s"`, res.Project.Name)
}

func verifyComment(ctx context.Context, args map[string]any, contentKey string, sc *server.ServerContext) (*verify.CommentResult, error) {
	v, err := common.RequiredStrings(args, "commentId", contentKey)
	if err != nil {
		return nil, err
	}
	return sc.Verifier().Comment(ctx, v[0], v[1], verify.CommentContext{
		TaskName:    common.OptionalString(args, "taskName"),
		ProjectName: common.OptionalString(args, "projectName"),
	})
}

func handleGetComment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if _, err := common.RequiredStrings(args, "commentId", "commentContent"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := verifyComment(ctx, args, "commentContent", sc)
	if err != nil {
		return common.ErrorResult(ctx, "get comment", err), nil
	}
	return common.JSONResult(common.CommentMap(*res.Comment)), nil
}

func handleGetTaskComments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	v, err := common.RequiredStrings(request.GetArguments(), "taskId", "taskName", "projectName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := sc.Verifier().Task(ctx, v[0], v[1], v[2]); err != nil {
		return common.ErrorResult(ctx, "get task comments", err), nil
	}
	return listComments(ctx, sc, todoist.Container{Kind: todoist.ContainerTask, ID: v[0]}, "get task comments")
}

func handleGetProjectComments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	v, err := common.RequiredStrings(request.GetArguments(), "projectId", "projectName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := sc.Verifier().Project(ctx, v[0], v[1]); err != nil {
		return common.ErrorResult(ctx, "get project comments", err), nil
	}
	return listComments(ctx, sc, todoist.Container{Kind: todoist.ContainerProject, ID: v[0]}, "get project comments")
}

func listComments(ctx context.Context, sc *server.ServerContext, container todoist.Container, action string) (*mcp.CallToolResult, error) {
	api := sc.API()
	comments, err := todoist.FetchAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Comment], error) {
		return api.ListComments(ctx, container, cursor)
	})
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	out := make([]map[string]any, 0, len(comments))
	for _, c := range comments {
		out = append(out, common.CommentMap(c))
	}
	return common.JSONResult(out), nil
}

func parseAttachment(raw any) (*todoist.Attachment, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("attachment must be an object")
	}
	fileURL, err := common.RequiredString(m, "fileUrl")
	if err != nil {
		return nil, fmt.Errorf("attachment.%w", err)
	}
	return &todoist.Attachment{
		FileName:     common.OptionalString(m, "fileName"),
		FileURL:      fileURL,
		FileType:     common.OptionalString(m, "fileType"),
		ResourceType: common.OptionalString(m, "resourceType"),
	}, nil
}

func handleAddComment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	content, err := common.RequiredString(args, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	attachment, err := parseAttachment(args["attachment"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	taskID := common.OptionalString(args, "taskId")
	projectID := common.OptionalString(args, "projectId")
	taskName := common.OptionalString(args, "taskName")
	projectName := common.OptionalString(args, "projectName")

	if (taskID == "") == (projectID == "") {
		return mcp.NewToolResultError("You must provide exactly one of taskId or projectId"), nil
	}

	if taskID != "" {
		if taskName == "" || projectName == "" {
			return mcp.NewToolResultError("When providing a taskId, you must also provide taskName and projectName for verification"), nil
		}
		if _, err := sc.Verifier().Task(ctx, taskID, taskName, projectName); err != nil {
			return common.ErrorResult(ctx, "add comment", err), nil
		}
	} else {
		if projectName == "" {
			return mcp.NewToolResultError("When providing a projectId, you must also provide projectName for verification"), nil
		}
		if _, err := sc.Verifier().Project(ctx, projectID, projectName); err != nil {
			return common.ErrorResult(ctx, "add comment", err), nil
		}
	}

	comment, err := sc.API().AddComment(ctx, todoist.AddCommentArgs{
		TaskID:     taskID,
		ProjectID:  projectID,
		Content:    content,
		Attachment: attachment,
	})
	if err != nil {
		return common.ErrorResult(ctx, "add comment", err), nil
	}
	return common.JSONResult(common.CommentMap(*comment)), nil
}

func handleUpdateComment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if _, err := common.RequiredStrings(args, "commentId", "currentCommentContent"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newContent, err := common.RequiredString(args, "newContent")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := verifyComment(ctx, args, "currentCommentContent", sc)
	if err != nil {
		return common.ErrorResult(ctx, "update comment", err), nil
	}
	if _, err := sc.API().UpdateComment(ctx, res.Comment.ID, newContent); err != nil {
		return common.ErrorResult(ctx, "update comment", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(`Comment updated %s: "%s..." → "%s..."`,
		contextDescription(res), verify.Preview(res.Comment.Content), verify.Preview(newContent))), nil
}

func handleDeleteComment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if _, err := common.RequiredStrings(args, "commentId", "commentContent"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := verifyComment(ctx, args, "commentContent", sc)
	if err != nil {
		return common.ErrorResult(ctx, "delete comment", err), nil
	}
	if err := sc.API().DeleteComment(ctx, res.Comment.ID); err != nil {
		return common.ErrorResult(ctx, "delete comment", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(`Comment "%s..." deleted %s`,
		verify.Preview(res.Comment.Content), contextDescription(res))), nil
}
