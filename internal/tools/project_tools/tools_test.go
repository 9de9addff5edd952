package project_tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/todoistguard/internal/server"
	"github.com/teemow/todoistguard/internal/todoist"
	"github.com/teemow/todoistguard/internal/todoist/todoisttest"
	"github.com/teemow/todoistguard/internal/tools/common"
)

func newTestContext(t *testing.T) (*server.ServerContext, *todoisttest.Fake) {
	t.Helper()
	fake := todoisttest.New()
	fake.AddProjectFixture("P1", "Home")
	work := fake.AddProjectFixture("P2", "Work")
	parent := "P1"
	work.ParentID = &parent

	sc, err := server.NewServerContext(context.Background(), fake)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc, fake
}

func request(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func decode[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, result.IsError, textOf(t, result))
	var v T
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &v))
	return v
}

func TestRegisterProjectTools(t *testing.T) {
	sc, _ := newTestContext(t)

	readOnly := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterProjectTools(readOnly, sc, true))
	assert.Len(t, readOnly.ListTools(), 3)
	assert.NotContains(t, readOnly.ListTools(), "delete-project")

	full := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterProjectTools(full, sc, false))
	assert.Len(t, full.ListTools(), 6)
	assert.Contains(t, full.ListTools(), "delete-project")
}

func TestHandleGetProjects(t *testing.T) {
	sc, _ := newTestContext(t)

	result, err := handleGetProjects(context.Background(), request(nil), sc)
	require.NoError(t, err)

	projects := decode[[]map[string]any](t, result)
	assert.Equal(t, []map[string]any{
		{"id": "P1", "name": "Home", "parentId": nil},
		{"id": "P2", "name": "Work", "parentId": "P1"},
	}, projects)
}

func TestHandleGetProject(t *testing.T) {
	sc, _ := newTestContext(t)

	result, err := handleGetProject(context.Background(), request(map[string]any{"projectId": "P1", "projectName": "Home"}), sc)
	require.NoError(t, err)
	project := decode[map[string]any](t, result)
	assert.Equal(t, "Home", project["name"])
	assert.Equal(t, "list", project["viewStyle"])

	result, err = handleGetProject(context.Background(), request(map[string]any{"projectId": "P1", "projectName": "Office"}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, `Failed to get project: Project name mismatch. Expected: "Office", Actual: "Home"`, textOf(t, result))
}

func TestHandleGetProjectCollaborators(t *testing.T) {
	sc, fake := newTestContext(t)
	fake.Collaborators["P2"] = []todoist.Collaborator{{ID: "U1", Name: "Ada", Email: "ada@example.com"}}

	result, err := handleGetProjectCollaborators(context.Background(), request(map[string]any{"projectId": "P2", "projectName": "Work"}), sc)
	require.NoError(t, err)

	collaborators := decode[[]map[string]any](t, result)
	assert.Equal(t, []map[string]any{{"id": "U1", "name": "Ada", "email": "ada@example.com"}}, collaborators)

	result, err = handleGetProjectCollaborators(context.Background(), request(map[string]any{"projectId": "P2", "projectName": "Home"}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, 1, fake.Calls("ListCollaborators"))
}

func TestHandleAddProject(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleAddProject(context.Background(), request(map[string]any{
		"name": "Garden", "color": "green", "isFavorite": true, "viewStyle": "board",
		"parentId": "P1", "parentProjectName": "Home",
	}), sc)
	require.NoError(t, err)

	project := decode[map[string]any](t, result)
	assert.Equal(t, "Garden", project["name"])
	assert.Equal(t, "P1", project["parentId"])
	assert.Equal(t, "green", project["color"])
	assert.Equal(t, true, project["isFavorite"])
	assert.Equal(t, 1, fake.Calls("AddProject"))
}

func TestHandleAddProject_Rejected(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"unknown color", map[string]any{"color": "pink"}, "color must be one of: " + strings.Join(common.Colors, ", ")},
		{"unknown view", map[string]any{"viewStyle": "grid"}, "viewStyle must be one of: list, board, calendar"},
		{
			"parent mismatch",
			map[string]any{"parentId": "P1", "parentProjectName": "Work"},
			`Failed to add project: Parent project name mismatch. Expected: "Work", Actual: "Home"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, fake := newTestContext(t)
			args := map[string]any{"name": "Garden"}
			for k, v := range tt.args {
				args[k] = v
			}

			result, err := handleAddProject(context.Background(), request(args), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Equal(t, tt.want, textOf(t, result))
			assert.Equal(t, 0, fake.MutatingCalls())
		})
	}
}

func TestHandleUpdateProject(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleUpdateProject(context.Background(), request(map[string]any{
		"projectId": "P1", "projectName": "Home", "name": "House", "isFavorite": false,
	}), sc)
	require.NoError(t, err)

	project := decode[map[string]any](t, result)
	assert.Equal(t, "House", project["name"])
	assert.Equal(t, "House", fake.Projects["P1"].Name)
}

func TestHandleUpdateProject_NoChanges(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleUpdateProject(context.Background(), request(map[string]any{"projectId": "P1", "projectName": "Home"}), sc)
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Equal(t, "At least one of name, color, isFavorite or viewStyle must be provided", textOf(t, result))
	assert.Equal(t, 0, fake.TotalCalls())
}

func TestHandleDeleteProject(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleDeleteProject(context.Background(), request(map[string]any{"projectId": "P2", "projectName": "Work"}), sc)
	require.NoError(t, err)
	assert.Equal(t, `Project "Work" deleted`, textOf(t, result))
	assert.NotContains(t, fake.Projects, "P2")
}

func TestHandleDeleteProject_MismatchKeepsProject(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleDeleteProject(context.Background(), request(map[string]any{"projectId": "P2", "projectName": "Home"}), sc)
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Equal(t, `Failed to delete project: Project name mismatch. Expected: "Home", Actual: "Work"`, textOf(t, result))
	assert.Contains(t, fake.Projects, "P2")
	assert.Equal(t, 0, fake.Calls("DeleteProject"))
}
