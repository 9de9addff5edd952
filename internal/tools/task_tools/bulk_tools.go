package task_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/teemow/todoistguard/internal/destination"
	"github.com/teemow/todoistguard/internal/instrumentation"
	"github.com/teemow/todoistguard/internal/server"
	"github.com/teemow/todoistguard/internal/todoist"
	"github.com/teemow/todoistguard/internal/tools/batch"
	"github.com/teemow/todoistguard/internal/tools/common"
	"github.com/teemow/todoistguard/internal/verify"
)

// maxParallelVerifications bounds concurrent task checks in move-tasks.
const maxParallelVerifications = 5

func registerBulkTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	deleteBulkTool := mcp.NewTool("delete-tasks-bulk",
		mcp.WithDescription("Delete multiple tasks from Todoist in a single operation. Each task is verified before it is deleted; failures do not stop the batch."),
		taskVerificationsParam("Tasks to delete with verification data"),
	)
	s.AddTool(deleteBulkTool, common.InstrumentedToolHandlerWithService("delete-tasks-bulk", instrumentation.EntityTask, "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteTasksBulk(ctx, request, sc)
		}))

	moveTool := mcp.NewTool("move-tasks",
		mcp.WithDescription("Move multiple tasks to exactly one destination: a project, a section or a parent task. All tasks and the destination are verified before anything moves."),
		taskVerificationsParam("Tasks to move with verification data"),
		mcp.WithString("destinationProjectId", mcp.Description("Project ID to move tasks to")),
		mcp.WithString("destinationProjectName", mcp.Description("Project name for verification; for a section destination, the section's project name")),
		mcp.WithString("destinationSectionId", mcp.Description("Section ID to move tasks to")),
		mcp.WithString("destinationSectionName", mcp.Description("Section name for verification")),
		mcp.WithString("destinationParentTaskId", mcp.Description("Parent task ID to move tasks under")),
		mcp.WithString("destinationParentTaskName", mcp.Description("Parent task name for verification")),
		mcp.WithString("destinationParentProjectName", mcp.Description("Parent task project name for verification")),
	)
	s.AddTool(moveTool, common.InstrumentedToolHandlerWithService("move-tasks", instrumentation.EntityTask, "move", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMoveTasks(ctx, request, sc)
		}))

	return nil
}

func handleDeleteTasksBulk(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	items, err := batch.ParseTaskVerifications(args["taskVerifications"], "taskVerifications")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	metrics := sc.Metrics()
	results := batch.ProcessBatch(items,
		func(tv batch.TaskVerification) string { return tv.TaskID },
		func(tv batch.TaskVerification) (string, error) {
			res, err := sc.Verifier().Task(ctx, tv.TaskID, tv.TaskName, tv.CurrentProjectName)
			if err == nil {
				err = sc.API().DeleteTask(ctx, tv.TaskID)
			}
			if err != nil {
				metrics.RecordBulkItem(ctx, "delete-tasks-bulk", batch.StatusError)
				return "", err
			}
			metrics.RecordBulkItem(ctx, "delete-tasks-bulk", batch.StatusSuccess)
			return fmt.Sprintf(`Task "%s" deleted from project "%s"`, res.Task.Content, res.Project.Name), nil
		})

	successful, failed := batch.Count(results)
	sc.Logger().Debug("bulk delete finished", "successful", successful, "failed", failed)

	headline := fmt.Sprintf("Bulk delete completed: %d/%d tasks deleted successfully", successful, len(items))
	return mcp.NewToolResultText(batch.FormatSummary(headline, "Error deleting task", results)), nil
}

func destinationRequest(args map[string]any) destination.Request {
	var req destination.Request
	projectName := common.OptionalString(args, "destinationProjectName")

	if id := common.OptionalString(args, "destinationProjectId"); id != "" {
		req.Project = &destination.ProjectTarget{ID: id, Name: projectName}
	}
	if id := common.OptionalString(args, "destinationSectionId"); id != "" {
		req.Section = &destination.SectionTarget{
			ID:          id,
			Name:        common.OptionalString(args, "destinationSectionName"),
			ProjectName: projectName,
		}
	}
	if id := common.OptionalString(args, "destinationParentTaskId"); id != "" {
		req.ParentTask = &destination.ParentTaskTarget{
			ID:          id,
			Name:        common.OptionalString(args, "destinationParentTaskName"),
			ProjectName: common.OptionalString(args, "destinationParentProjectName"),
		}
	}
	return req
}

func handleMoveTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	items, err := batch.ParseTaskVerifications(args["taskVerifications"], "taskVerifications")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := destinationRequest(args)
	if err := destination.Check(req); err != nil {
		return common.ErrorResult(ctx, "move tasks", err), nil
	}

	verified := make([]*verify.TaskResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelVerifications)
	for i, tv := range items {
		i, tv := i, tv
		g.Go(func() error {
			res, err := sc.Verifier().Task(gctx, tv.TaskID, tv.TaskName, tv.CurrentProjectName)
			if err != nil {
				return err
			}
			verified[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return common.ErrorResult(ctx, "move tasks", err), nil
	}

	resolution, err := sc.Resolver().Resolve(ctx, req)
	if err != nil {
		return common.ErrorResult(ctx, "move tasks", err), nil
	}

	ids := make([]string, len(items))
	names := make([]string, len(verified))
	for i, res := range verified {
		ids[i] = items[i].TaskID
		names[i] = fmt.Sprintf(`"%s"`, res.Task.Content)
	}

	moved, err := sc.API().MoveTasks(ctx, ids, resolution.MoveArgs)
	if err != nil {
		if len(moved) > 0 {
			err = fmt.Errorf("moved %d of %d task(s) [%s] to %s before stopping: %w",
				len(moved), len(ids), strings.Join(quotedContents(moved), ", "), resolution.Description, err)
		}
		return common.ErrorResult(ctx, "move tasks", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Moved %d task(s) [%s] to %s",
		len(items), strings.Join(names, ", "), resolution.Description)), nil
}

func quotedContents(tasks []todoist.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = fmt.Sprintf(`"%s"`, t.Content)
	}
	return out
}
