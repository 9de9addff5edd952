package todoist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/todoistguard/internal/logging"
)

// recorder captures the requests a test server receives.
type recorder struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []map[string]any
}

func (r *recorder) add(req *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(req.Body).Decode(&body)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	r.bodies = append(r.bodies, body)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *recorder) last() (*http.Request, map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1], r.bodies[len(r.bodies)-1]
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) (*Client, *recorder) {
	t.Helper()

	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := Config{
		Token:        "test-token",
		BaseURL:      srv.URL,
		InitialDelay: time.Millisecond,
		RateLimit:    1000,
		Logger:       logging.Discard(),
	}
	for _, m := range mutate {
		m(&cfg)
	}

	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c, rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestClient_GetTask(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":         "T1",
			"content":    "Buy milk",
			"project_id": "P1",
			"priority":   4,
			"labels":     []string{"errand"},
		})
	})

	task, err := c.GetTask(context.Background(), "T1")
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", task.Content)
	assert.Equal(t, "P1", task.ProjectID)
	assert.Equal(t, 4, task.Priority)
	assert.Equal(t, []string{"errand"}, task.Labels)

	req, _ := rec.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/tasks/T1", req.URL.Path)
	assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("X-Request-Id"), "reads carry no request id")
}

func TestClient_APIVersion(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "P1", "name": "Home"})
	}, func(cfg *Config) { cfg.APIVersion = "v2" })

	_, err := c.GetProject(context.Background(), "P1")
	require.NoError(t, err)

	req, _ := rec.last()
	assert.Equal(t, "/api/v2/projects/P1", req.URL.Path)
}

func TestClient_AddTaskSendsRequestID(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "T2", "content": "Call mom", "project_id": "P1"})
	})

	task, err := c.AddTask(context.Background(), AddTaskArgs{Content: "Call mom", ProjectID: "P1", Priority: 2})
	require.NoError(t, err)
	assert.Equal(t, "T2", task.ID)

	req, body := rec.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/tasks", req.URL.Path)
	assert.NotEmpty(t, req.Header.Get("X-Request-Id"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "Call mom", body["content"])
	assert.Equal(t, "P1", body["project_id"])
	assert.Equal(t, float64(2), body["priority"])
	assert.NotContains(t, body, "due_string")
}

func TestClient_RetriesKeepRequestID(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
		ids      []string
	)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		ids = append(ids, r.Header.Get("X-Request-Id"))
		mu.Unlock()

		if n < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "busy"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.CloseTask(context.Background(), "T1")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
	require.Len(t, ids, 3)
	assert.NotEmpty(t, ids[0])
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, ids[0], ids[2])
}

func TestClient_RetriesExhausted(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "slow down"})
	})

	_, err := c.GetTask(context.Background(), "T1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, DefaultMaxRetries, rec.count())
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad"})
	})

	err := c.DeleteTask(context.Background(), "T1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "delete task", apiErr.Op)
	assert.Equal(t, 1, rec.count())
	assert.True(t, IsServiceError(err))
	assert.False(t, IsNotFound(err))
}

func TestClient_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.GetSection(context.Background(), "S404")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))
}

func TestClient_Timeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}, func(cfg *Config) {
		cfg.Timeout = 50 * time.Millisecond
		cfg.MaxRetries = 1
	})

	start := time.Now()
	_, err := c.GetLabel(context.Background(), "L1")

	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_CanceledContext(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetTask(ctx, "T1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, rec.count())
}

func TestClient_ListTasksQuery(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"results":     []map[string]any{{"id": "T1"}, {"id": "T2"}},
			"next_cursor": "abc",
		})
	})

	page, err := c.ListTasks(context.Background(), "P1", "cur", 20)
	require.NoError(t, err)

	assert.Len(t, page.Results, 2)
	assert.Equal(t, "abc", page.NextCursor)

	req, _ := rec.last()
	assert.Equal(t, "P1", req.URL.Query().Get("project_id"))
	assert.Equal(t, "cur", req.URL.Query().Get("cursor"))
	assert.Equal(t, "20", req.URL.Query().Get("limit"))
}

func TestClient_ListComments(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"results": []any{}})
	})

	_, err := c.ListComments(context.Background(), Container{Kind: ContainerProject, ID: "P1"}, "")
	require.NoError(t, err)
	req, _ := rec.last()
	assert.Equal(t, "P1", req.URL.Query().Get("project_id"))
	assert.Empty(t, req.URL.Query().Get("task_id"))

	_, err = c.ListComments(context.Background(), Container{Kind: "note", ID: "X"}, "")
	assert.Error(t, err)
	assert.Equal(t, 1, rec.count())
}

func TestClient_AddCommentNeedsOneContainer(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "C1"})
	})

	_, err := c.AddComment(context.Background(), AddCommentArgs{TaskID: "T1", ProjectID: "P1", Content: "hi"})
	assert.Error(t, err)
	_, err = c.AddComment(context.Background(), AddCommentArgs{Content: "hi"})
	assert.Error(t, err)
	assert.Equal(t, 0, rec.count())

	comment, err := c.AddComment(context.Background(), AddCommentArgs{TaskID: "T1", Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "C1", comment.ID)
}

func TestClient_MoveTasks(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/tasks/T2/move" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "T1", "section_id": "S1"})
	})

	moved, err := c.MoveTasks(context.Background(), []string{"T1", "T2", "T3"}, MoveArgs{SectionID: "S1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "T2")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, moved, 1)
	assert.Equal(t, 2, rec.count())

	_, body := rec.last()
	assert.Equal(t, map[string]any{"section_id": "S1"}, body)
}

func TestComment_Container(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		comment Comment
		want    Container
		ok      bool
	}{
		{"task", Comment{TaskID: str("T1")}, Container{Kind: ContainerTask, ID: "T1"}, true},
		{"item id", Comment{ItemID: str("T2")}, Container{Kind: ContainerTask, ID: "T2"}, true},
		{"project", Comment{ProjectID: str("P1")}, Container{Kind: ContainerProject, ID: "P1"}, true},
		{"both", Comment{TaskID: str("T1"), ProjectID: str("P1")}, Container{}, false},
		{"neither", Comment{}, Container{}, false},
		{"empty strings", Comment{TaskID: str(""), ProjectID: str("")}, Container{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.comment.Container()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIError(t *testing.T) {
	err := &APIError{Op: "get task", StatusCode: http.StatusNotFound, Message: "gone"}

	assert.Equal(t, "get task: Todoist API error: 404 Not Found: gone", err.Error())
	assert.False(t, err.Retryable())
	assert.True(t, (&APIError{StatusCode: http.StatusBadGateway}).Retryable())
	assert.True(t, (&APIError{StatusCode: http.StatusTooManyRequests}).Retryable())
}
