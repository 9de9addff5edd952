package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/todoistguard/internal/server"
	"github.com/teemow/todoistguard/internal/todoist/todoisttest"
)

func newTestContext(t *testing.T) (*server.ServerContext, *todoisttest.Fake) {
	t.Helper()
	fake := todoisttest.New()
	fake.AddProjectFixture("P1", "Home")
	child := fake.AddProjectFixture("P2", "Garden")
	parent := "P1"
	child.ParentID = &parent

	sc, err := server.NewServerContext(context.Background(), fake)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc, fake
}

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func decode(t *testing.T, contents []mcp.ResourceContents) []map[string]any {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)

	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestRegisterResources(t *testing.T) {
	sc, _ := newTestContext(t)
	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithResourceCapabilities(false, false))

	assert.NoError(t, RegisterResources(s, sc))
}

func TestHandleProjects(t *testing.T) {
	sc, _ := newTestContext(t)

	contents, err := handleProjects(context.Background(), readRequest(ProjectsURI), sc)
	require.NoError(t, err)

	projects := decode(t, contents)
	require.Len(t, projects, 2)
	assert.Equal(t, map[string]any{"id": "P1", "name": "Home"}, projects[0])
	assert.Equal(t, map[string]any{"id": "P2", "name": "Garden", "parentId": "P1"}, projects[1])
}

func TestHandleProjects_APIFailure(t *testing.T) {
	sc, fake := newTestContext(t)
	fake.Fail("ListProjects", errors.New("service unavailable"))

	_, err := handleProjects(context.Background(), readRequest(ProjectsURI), sc)
	assert.EqualError(t, err, "failed to list projects: service unavailable")
}

func TestHandlePriorities(t *testing.T) {
	contents, err := handlePriorities(context.Background(), readRequest(PrioritiesURI))
	require.NoError(t, err)

	priorities := decode(t, contents)
	require.Len(t, priorities, 4)
	assert.Equal(t, map[string]any{"value": float64(1), "category": "Urgent"}, priorities[0])
	assert.Equal(t, map[string]any{"value": float64(4), "category": "Low"}, priorities[3])
}
