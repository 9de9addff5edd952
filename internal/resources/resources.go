package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoistguard/internal/priority"
	"github.com/teemow/todoistguard/internal/server"
	"github.com/teemow/todoistguard/internal/todoist"
)

const (
	ProjectsURI   = "todoist://projects"
	PrioritiesURI = "todoist://reference/priorities"
)

// RegisterResources registers the Todoist resources.
func RegisterResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	projectsResource := mcp.NewResource(
		ProjectsURI,
		"Todoist Projects",
		mcp.WithResourceDescription("ID and name of every project, for use as verification parameters"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(projectsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProjects(ctx, request, sc)
	})

	prioritiesResource := mcp.NewResource(
		PrioritiesURI,
		"Task Priorities",
		mcp.WithResourceDescription("Priority categories accepted and returned by the task tools"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(prioritiesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handlePriorities(ctx, request)
	})

	return nil
}

func handleProjects(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	api := sc.API()
	projects, err := todoist.FetchAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Project], error) {
		return api.ListProjects(ctx, cursor)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	entries := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		entry := map[string]any{
			"id":   p.ID,
			"name": p.Name,
		}
		if p.ParentID != nil {
			entry["parentId"] = *p.ParentID
		}
		if p.IsInboxProject {
			entry["isInboxProject"] = true
		}
		entries = append(entries, entry)
	}
	return jsonContents(request.Params.URI, entries)
}

func handlePriorities(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries := make([]map[string]any, 0, 4)
	for n := 1; n <= 4; n++ {
		category, _ := priority.FromOrdinal(n)
		entries = append(entries, map[string]any{
			"value":    n,
			"category": category.String(),
		})
	}
	return jsonContents(request.Params.URI, entries)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
