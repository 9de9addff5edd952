package task_tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAddTask(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleAddTask(context.Background(), request(map[string]any{
		"content":      "Call plumber",
		"projectId":    "P1",
		"projectName":  "Home",
		"priority":     "urgent",
		"labels":       []any{"phone"},
		"dueDate":      "2026-10-20",
		"duration":     float64(30),
		"durationUnit": "minute",
	}), sc)
	require.NoError(t, err)

	task := decode[map[string]any](t, result)
	assert.Equal(t, "1001", task["id"])
	assert.Equal(t, "Urgent", task["priority"])
	assert.Equal(t, "P1", task["projectId"])
	assert.Equal(t, []any{"phone"}, task["labels"])
	assert.NotContains(t, task, "duration", "duration is not a default field")

	stored := fake.Tasks["1001"]
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.Priority)
	require.NotNil(t, stored.Duration)
	assert.Equal(t, 30, stored.Duration.Amount)
	assert.Equal(t, "minute", stored.Duration.Unit)
}

func TestHandleAddTask_UnderVerifiedParent(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleAddTask(context.Background(), request(map[string]any{
		"content":        "Check expiry date",
		"parentId":       "T1",
		"parentTaskName": "Buy milk",
		"projectName":    "Home",
	}), sc)
	require.NoError(t, err)

	task := decode[map[string]any](t, result)
	assert.Equal(t, "T1", task["parentId"])
	assert.Equal(t, 1, fake.Calls("AddTask"))
}

func TestHandleAddTask_Rejected(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "both due forms",
			args: map[string]any{"dueDate": "2026-10-20", "dueDatetime": "2026-10-20T10:00:00Z"},
			want: "Cannot provide both dueDate and dueDatetime",
		},
		{
			name: "duration without unit",
			args: map[string]any{"duration": float64(15)},
			want: "Must provide both duration and durationUnit, or neither",
		},
		{
			name: "unit without duration",
			args: map[string]any{"durationUnit": "day"},
			want: "Must provide both duration and durationUnit, or neither",
		},
		{
			name: "unknown unit",
			args: map[string]any{"duration": float64(1), "durationUnit": "week"},
			want: "durationUnit must be one of: minute, day",
		},
		{
			name: "parent name without project name",
			args: map[string]any{"parentId": "T1", "parentTaskName": "Buy milk"},
			want: "projectName is required when parentTaskName is provided",
		},
		{
			name: "bad priority",
			args: map[string]any{"priority": "someday"},
			want: `invalid priority "someday": must be one of Urgent, High, Medium, Low`,
		},
		{
			name: "project mismatch",
			args: map[string]any{"projectId": "P1", "projectName": "Work"},
			want: `Failed to add task: Project name mismatch. Expected: "Work", Actual: "Home"`,
		},
		{
			name: "parent mismatch",
			args: map[string]any{"parentId": "T1", "parentTaskName": "Buy cheese", "projectName": "Home"},
			want: `Failed to add task: Parent task name mismatch. Expected: "Buy cheese", Actual: "Buy milk"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, fake := newTestContext(t)
			args := map[string]any{"content": "New task"}
			for k, v := range tt.args {
				args[k] = v
			}

			result, err := handleAddTask(context.Background(), request(args), sc)
			require.NoError(t, err)

			assert.True(t, result.IsError)
			assert.Equal(t, tt.want, textOf(t, result))
			assert.Equal(t, 0, fake.MutatingCalls())
		})
	}
}

func TestHandleQuickAddTask(t *testing.T) {
	t.Run("lands in expected project", func(t *testing.T) {
		sc, _ := newTestContext(t)

		result, err := handleQuickAddTask(context.Background(), request(map[string]any{
			"text": "Send invoice #Work", "projectName": "Work", "autoReminder": true,
		}), sc)
		require.NoError(t, err)

		task := decode[map[string]any](t, result)
		assert.Equal(t, "P2", task["projectId"])
	})

	t.Run("lands elsewhere", func(t *testing.T) {
		sc, _ := newTestContext(t)

		result, err := handleQuickAddTask(context.Background(), request(map[string]any{
			"text": "Send invoice #Work", "projectName": "Home",
		}), sc)
		require.NoError(t, err)

		assert.True(t, result.IsError)
		assert.Equal(t, `Task was created in project "Work" but expected "Home"`, textOf(t, result))
	})

	t.Run("no expectation", func(t *testing.T) {
		sc, fake := newTestContext(t)

		result, err := handleQuickAddTask(context.Background(), request(map[string]any{"text": "Read a book"}), sc)
		require.NoError(t, err)

		assert.False(t, result.IsError)
		assert.Equal(t, 0, fake.Calls("GetProject"))
	})
}

func TestHandleTaskAction(t *testing.T) {
	tests := []struct {
		action taskAction
		want   string
	}{
		{taskActions[0], `Task "Buy milk" closed in project "Home"`},
		{taskActions[1], `Task "Buy milk" reopened in project "Home"`},
		{taskActions[2], `Task "Buy milk" deleted from project "Home"`},
	}

	for _, tt := range tests {
		t.Run(tt.action.tool, func(t *testing.T) {
			sc, fake := newTestContext(t)

			result, err := handleTaskAction(context.Background(), request(map[string]any{
				"taskId": "T1", "taskName": "Buy milk", "projectName": "Home",
			}), sc, tt.action)
			require.NoError(t, err)

			assert.False(t, result.IsError, textOf(t, result))
			assert.Equal(t, tt.want, textOf(t, result))
			assert.Equal(t, 1, fake.MutatingCalls())
		})
	}
}

func TestHandleTaskAction_MismatchPreventsWrite(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleTaskAction(context.Background(), request(map[string]any{
		"taskId": "T1", "taskName": "Buy bread", "projectName": "Home",
	}), sc, taskActions[2])
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Equal(t, `Failed to delete task: Task name mismatch. Expected: "Buy bread", Actual: "Buy milk"`, textOf(t, result))
	assert.Equal(t, 0, fake.Calls("DeleteTask"))
	assert.Contains(t, fake.Tasks, "T1")
}

func TestHandleTaskAction_NotFound(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleTaskAction(context.Background(), request(map[string]any{
		"taskId": "T404", "taskName": "Ghost", "projectName": "Home",
	}), sc, taskActions[0])
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "Failed to close task:")
	assert.Equal(t, 0, fake.MutatingCalls())
}
