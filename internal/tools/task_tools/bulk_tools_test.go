package task_tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/todoistguard/internal/todoist"
)

func verifications(items ...[3]string) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{"taskId": it[0], "taskName": it[1], "currentProjectName": it[2]})
	}
	return out
}

func TestHandleDeleteTasksBulk(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleDeleteTasksBulk(context.Background(), request(map[string]any{
		"taskVerifications": verifications(
			[3]string{"T1", "Buy milk", "Home"},
			[3]string{"T3", "Write report", "Home"},
			[3]string{"T2", "Buy bread", "Home"},
		),
	}), sc)
	require.NoError(t, err)

	want := "Bulk delete completed: 2/3 tasks deleted successfully\n" +
		"\n" +
		"✓ Task \"Buy milk\" deleted from project \"Home\"\n" +
		"✓ Task \"Buy bread\" deleted from project \"Home\"\n" +
		"\n" +
		"Errors:\n" +
		"✗ Error deleting task T3: Project name mismatch. Expected: \"Home\", Actual: \"Work\""
	assert.False(t, result.IsError)
	assert.Equal(t, want, textOf(t, result))

	assert.NotContains(t, fake.Tasks, "T1")
	assert.NotContains(t, fake.Tasks, "T2")
	assert.Contains(t, fake.Tasks, "T3")
	assert.Equal(t, 2, fake.Calls("DeleteTask"))
}

func TestHandleDeleteTasksBulk_AllSucceed(t *testing.T) {
	sc, _ := newTestContext(t)

	result, err := handleDeleteTasksBulk(context.Background(), request(map[string]any{
		"taskVerifications": `[{"taskId":"T3","taskName":"Write report","currentProjectName":"Work"}]`,
	}), sc)
	require.NoError(t, err)

	assert.Equal(t, "Bulk delete completed: 1/1 tasks deleted successfully\n\n✓ Task \"Write report\" deleted from project \"Work\"",
		textOf(t, result))
}

func TestHandleDeleteTasksBulk_InvalidArgument(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleDeleteTasksBulk(context.Background(), request(map[string]any{
		"taskVerifications": []any{map[string]any{"taskId": "T1"}},
	}), sc)
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "invalid taskVerifications")
	assert.Equal(t, 0, fake.TotalCalls())
}

func TestHandleMoveTasks(t *testing.T) {
	tests := []struct {
		name     string
		dest     map[string]any
		wantText string
		wantArgs todoist.MoveArgs
	}{
		{
			name:     "to project",
			dest:     map[string]any{"destinationProjectId": "P2", "destinationProjectName": "Work"},
			wantText: `Moved 2 task(s) ["Buy milk", "Buy bread"] to project "Work"`,
			wantArgs: todoist.MoveArgs{ProjectID: "P2"},
		},
		{
			name: "to section",
			dest: map[string]any{
				"destinationSectionId": "S1", "destinationSectionName": "Groceries", "destinationProjectName": "Home",
			},
			wantText: `Moved 2 task(s) ["Buy milk", "Buy bread"] to section "Groceries" in project "Home"`,
			wantArgs: todoist.MoveArgs{SectionID: "S1"},
		},
		{
			name: "under parent task",
			dest: map[string]any{
				"destinationParentTaskId": "T3", "destinationParentTaskName": "Write report", "destinationParentProjectName": "Work",
			},
			wantText: `Moved 2 task(s) ["Buy milk", "Buy bread"] to under parent task "Write report" in project "Work"`,
			wantArgs: todoist.MoveArgs{ParentID: "T3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, fake := newTestContext(t)
			args := map[string]any{
				"taskVerifications": verifications(
					[3]string{"T1", "Buy milk", "Home"},
					[3]string{"T2", "Buy bread", "Home"},
				),
			}
			for k, v := range tt.dest {
				args[k] = v
			}

			result, err := handleMoveTasks(context.Background(), request(args), sc)
			require.NoError(t, err)

			assert.Equal(t, tt.wantText, textOf(t, result))
			require.Len(t, fake.Moves, 1)
			assert.Equal(t, []string{"T1", "T2"}, fake.Moves[0].IDs)
			assert.Equal(t, tt.wantArgs, fake.Moves[0].Args)
		})
	}
}

func TestHandleMoveTasks_AmbiguousDestinationMakesNoCalls(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleMoveTasks(context.Background(), request(map[string]any{
		"taskVerifications":      verifications([3]string{"T1", "Buy milk", "Home"}),
		"destinationProjectId":   "P2",
		"destinationProjectName": "Work",
		"destinationSectionId":   "S1",
		"destinationSectionName": "Groceries",
	}), sc)
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "You must specify exactly one destination")
	assert.Equal(t, 0, fake.TotalCalls())
}

func TestHandleMoveTasks_IncompleteDestinationMakesNoCalls(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleMoveTasks(context.Background(), request(map[string]any{
		"taskVerifications":    verifications([3]string{"T1", "Buy milk", "Home"}),
		"destinationSectionId": "S1",
	}), sc)
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "Missing verification parameters for section destination")
	assert.Equal(t, 0, fake.TotalCalls())
}

func TestHandleMoveTasks_TaskMismatchMovesNothing(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleMoveTasks(context.Background(), request(map[string]any{
		"taskVerifications": verifications(
			[3]string{"T1", "Buy milk", "Home"},
			[3]string{"T2", "Buy butter", "Home"},
		),
		"destinationProjectId":   "P2",
		"destinationProjectName": "Work",
	}), sc)
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Equal(t, `Failed to move tasks: Task name mismatch. Expected: "Buy butter", Actual: "Buy bread"`, textOf(t, result))
	assert.Empty(t, fake.Moves)
	assert.Equal(t, 0, fake.MutatingCalls())
}

func TestHandleMoveTasks_DestinationMismatchMovesNothing(t *testing.T) {
	sc, fake := newTestContext(t)

	result, err := handleMoveTasks(context.Background(), request(map[string]any{
		"taskVerifications":      verifications([3]string{"T1", "Buy milk", "Home"}),
		"destinationProjectId":   "P2",
		"destinationProjectName": "Office",
	}), sc)
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Equal(t, `Failed to move tasks: Project name mismatch. Expected: "Office", Actual: "Work"`, textOf(t, result))
	assert.Empty(t, fake.Moves)
}

func TestHandleMoveTasks_PartialMoveReportsMovedTasks(t *testing.T) {
	sc, fake := newTestContext(t)
	fake.FailMove("T2", errors.New("service unavailable"))

	result, err := handleMoveTasks(context.Background(), request(map[string]any{
		"taskVerifications": verifications(
			[3]string{"T1", "Buy milk", "Home"},
			[3]string{"T2", "Buy bread", "Home"},
			[3]string{"T3", "Write report", "Work"},
		),
		"destinationProjectId":   "P2",
		"destinationProjectName": "Work",
	}), sc)
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Equal(t, `Failed to move tasks: moved 1 of 3 task(s) ["Buy milk"] to project "Work" before stopping: failed to move task T2: service unavailable`,
		textOf(t, result))
	assert.Equal(t, "P2", fake.Tasks["T1"].ProjectID)
	assert.Equal(t, "P1", fake.Tasks["T2"].ProjectID)
}

func TestHandleMoveTasks_FirstMoveFailing(t *testing.T) {
	sc, fake := newTestContext(t)
	fake.FailMove("T1", errors.New("service unavailable"))

	result, err := handleMoveTasks(context.Background(), request(map[string]any{
		"taskVerifications":      verifications([3]string{"T1", "Buy milk", "Home"}),
		"destinationProjectId":   "P2",
		"destinationProjectName": "Work",
	}), sc)
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Equal(t, "Failed to move tasks: failed to move task T1: service unavailable", textOf(t, result))
	assert.Equal(t, "P1", fake.Tasks["T1"].ProjectID)
}
