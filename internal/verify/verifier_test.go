package verify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/todoistguard/internal/logging"
	"github.com/teemow/todoistguard/internal/todoist"
	"github.com/teemow/todoistguard/internal/todoist/todoisttest"
)

func newFixture() (*todoisttest.Fake, *Verifier) {
	f := todoisttest.New()
	f.AddProjectFixture("P1", "Home")
	f.AddProjectFixture("P2", "Work")
	f.AddTaskFixture("T1", "Buy milk", "P1", 4)
	f.AddTaskFixture("T2", "Write report", "P2", 1)
	f.AddSectionFixture("S1", "Groceries", "P1")
	f.AddLabelFixture("L1", "errand")
	return f, New(f, WithLogger(logging.Discard()))
}

func TestTask(t *testing.T) {
	ctx := context.Background()

	t.Run("matching names return the entities", func(t *testing.T) {
		f, v := newFixture()

		res, err := v.Task(ctx, "T1", "Buy milk", "Home")
		require.NoError(t, err)
		assert.Equal(t, "T1", res.Task.ID)
		assert.Equal(t, "Buy milk", res.Task.Content)
		assert.Equal(t, "Home", res.Project.Name)
		assert.Equal(t, 1, f.Calls("GetTask"))
		assert.Equal(t, 1, f.Calls("GetProject"))
		assert.Equal(t, 0, f.MutatingCalls())
	})

	t.Run("wrong project name fails on the project field", func(t *testing.T) {
		_, v := newFixture()

		_, err := v.Task(ctx, "T1", "Buy milk", "Work")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIdentityMismatch)

		var mm *MismatchError
		require.True(t, errors.As(err, &mm))
		assert.Equal(t, "project_name", mm.Field)
		assert.Equal(t, "Work", mm.Expected)
		assert.Equal(t, "Home", mm.Actual)
		assert.Equal(t, `Project name mismatch. Expected: "Work", Actual: "Home"`, err.Error())
	})

	t.Run("wrong task name is reported before the project", func(t *testing.T) {
		_, v := newFixture()

		_, err := v.Task(ctx, "T1", "Buy bread", "Work")
		assert.EqualError(t, err, `Task name mismatch. Expected: "Buy bread", Actual: "Buy milk"`)
	})

	t.Run("comparison is exact", func(t *testing.T) {
		_, v := newFixture()

		_, err := v.Task(ctx, "T1", "buy milk", "Home")
		assert.ErrorIs(t, err, ErrIdentityMismatch)

		_, err = v.Task(ctx, "T1", "Buy milk ", "Home")
		assert.ErrorIs(t, err, ErrIdentityMismatch)
	})

	t.Run("not found propagates unchanged", func(t *testing.T) {
		f, v := newFixture()

		_, err := v.Task(ctx, "missing", "Buy milk", "Home")
		assert.ErrorIs(t, err, todoist.ErrNotFound)
		assert.True(t, todoist.IsServiceError(err))
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Equal(t, 0, f.Calls("GetProject"))
	})

	t.Run("service errors propagate unchanged", func(t *testing.T) {
		f, v := newFixture()
		apiErr := &todoist.APIError{Op: "get project", StatusCode: 503}
		f.Fail("GetProject", apiErr)

		_, err := v.Task(ctx, "T1", "Buy milk", "Home")
		var got *todoist.APIError
		require.True(t, errors.As(err, &got))
		assert.Same(t, apiErr, got)
		assert.Equal(t, KindServiceError, KindOf(err))
	})
}

func TestParentTask(t *testing.T) {
	_, v := newFixture()
	ctx := context.Background()

	_, err := v.ParentTask(ctx, "T1", "Buy eggs", "Home")
	assert.EqualError(t, err, `Parent task name mismatch. Expected: "Buy eggs", Actual: "Buy milk"`)

	_, err = v.ParentTask(ctx, "T1", "Buy milk", "Work")
	assert.EqualError(t, err, `Project name mismatch for parent task. Expected: "Work", Actual: "Home"`)

	res, err := v.ParentTask(ctx, "T1", "Buy milk", "Home")
	require.NoError(t, err)
	assert.Equal(t, "T1", res.Task.ID)
}

func TestProject(t *testing.T) {
	_, v := newFixture()
	ctx := context.Background()

	res, err := v.Project(ctx, "P2", "Work")
	require.NoError(t, err)
	assert.Equal(t, "P2", res.Project.ID)

	_, err = v.Project(ctx, "P2", "Home")
	assert.EqualError(t, err, `Project name mismatch. Expected: "Home", Actual: "Work"`)

	_, err = v.ParentProject(ctx, "P2", "Home")
	assert.EqualError(t, err, `Parent project name mismatch. Expected: "Home", Actual: "Work"`)
}

func TestSection(t *testing.T) {
	_, v := newFixture()
	ctx := context.Background()

	res, err := v.Section(ctx, "S1", "Groceries", "Home")
	require.NoError(t, err)
	assert.Equal(t, "S1", res.Section.ID)
	assert.Equal(t, "P1", res.Project.ID)

	_, err = v.Section(ctx, "S1", "Errands", "Home")
	assert.EqualError(t, err, `Section name mismatch. Expected: "Errands", Actual: "Groceries"`)

	_, err = v.Section(ctx, "S1", "Groceries", "Work")
	assert.EqualError(t, err, `Project name mismatch. Expected: "Work", Actual: "Home"`)
}

func TestLabel(t *testing.T) {
	_, v := newFixture()
	ctx := context.Background()

	res, err := v.Label(ctx, "L1", "errand")
	require.NoError(t, err)
	assert.Equal(t, "L1", res.Label.ID)

	_, err = v.Label(ctx, "L1", "Errand")
	assert.EqualError(t, err, `Label name mismatch. Expected: "Errand", Actual: "errand"`)
}

func TestComment(t *testing.T) {
	ctx := context.Background()
	long := strings.Repeat("a", 40) + strings.Repeat("b", 30)

	tests := []struct {
		name      string
		setup     func(f *todoisttest.Fake)
		commentID string
		prefix    string
		cc        CommentContext
		wantErr   error
		wantMsg   string
		wantTask  bool
	}{
		{
			name:      "task comment with both names verifies",
			setup:     func(f *todoisttest.Fake) { f.AddTaskCommentFixture("C1", "Get the organic one", "T1") },
			commentID: "C1",
			prefix:    "Get the organic one",
			cc:        CommentContext{TaskName: "Buy milk", ProjectName: "Home"},
			wantTask:  true,
		},
		{
			name:      "task comment with only a project name is invalid",
			setup:     func(f *todoisttest.Fake) { f.AddTaskCommentFixture("C1", "Get the organic one", "T1") },
			commentID: "C1",
			prefix:    "Get the organic one",
			cc:        CommentContext{ProjectName: "Home"},
			wantErr:   ErrInvalidVerificationParameters,
			wantMsg:   "Invalid comment validation parameters: must provide either (taskName + projectName) or just projectName",
		},
		{
			name:      "task comment with wrong task name",
			setup:     func(f *todoisttest.Fake) { f.AddTaskCommentFixture("C1", "Get the organic one", "T1") },
			commentID: "C1",
			prefix:    "Get the organic one",
			cc:        CommentContext{TaskName: "Buy bread", ProjectName: "Home"},
			wantErr:   ErrIdentityMismatch,
			wantMsg:   `Task name mismatch for comment. Expected: "Buy bread", Actual: "Buy milk"`,
		},
		{
			name:      "task comment with wrong project name",
			setup:     func(f *todoisttest.Fake) { f.AddTaskCommentFixture("C1", "Get the organic one", "T1") },
			commentID: "C1",
			prefix:    "Get the organic one",
			cc:        CommentContext{TaskName: "Buy milk", ProjectName: "Work"},
			wantErr:   ErrIdentityMismatch,
			wantMsg:   `Project name mismatch for comment. Expected: "Work", Actual: "Home"`,
		},
		{
			name:      "project comment with project name verifies",
			setup:     func(f *todoisttest.Fake) { f.AddProjectCommentFixture("C2", "Quarterly plan", "P2") },
			commentID: "C2",
			prefix:    "Quarterly plan",
			cc:        CommentContext{ProjectName: "Work"},
		},
		{
			name:      "project comment with a task name is invalid",
			setup:     func(f *todoisttest.Fake) { f.AddProjectCommentFixture("C2", "Quarterly plan", "P2") },
			commentID: "C2",
			prefix:    "Quarterly plan",
			cc:        CommentContext{TaskName: "Write report", ProjectName: "Work"},
			wantErr:   ErrInvalidVerificationParameters,
		},
		{
			name:      "project comment without names is invalid",
			setup:     func(f *todoisttest.Fake) { f.AddProjectCommentFixture("C2", "Quarterly plan", "P2") },
			commentID: "C2",
			prefix:    "Quarterly plan",
			wantErr:   ErrInvalidVerificationParameters,
		},
		{
			name:      "project comment with wrong project name",
			setup:     func(f *todoisttest.Fake) { f.AddProjectCommentFixture("C2", "Quarterly plan", "P2") },
			commentID: "C2",
			prefix:    "Quarterly plan",
			cc:        CommentContext{ProjectName: "Home"},
			wantErr:   ErrIdentityMismatch,
			wantMsg:   `Project name mismatch for comment. Expected: "Home", Actual: "Work"`,
		},
		{
			name:      "long content compares only the first 50 characters",
			setup:     func(f *todoisttest.Fake) { f.AddProjectCommentFixture("C3", long, "P2") },
			commentID: "C3",
			prefix:    long[:50],
			cc:        CommentContext{ProjectName: "Work"},
		},
		{
			name:      "full long content does not match the preview",
			setup:     func(f *todoisttest.Fake) { f.AddProjectCommentFixture("C3", long, "P2") },
			commentID: "C3",
			prefix:    long,
			cc:        CommentContext{ProjectName: "Work"},
			wantErr:   ErrIdentityMismatch,
			wantMsg:   `Comment content mismatch. Expected: "` + long + `", Actual: "` + long[:50] + `"`,
		},
		{
			name: "comment with both containers is invalid",
			setup: func(f *todoisttest.Fake) {
				c := f.AddTaskCommentFixture("C4", "odd", "T1")
				projectID := "P1"
				c.ProjectID = &projectID
			},
			commentID: "C4",
			prefix:    "odd",
			cc:        CommentContext{TaskName: "Buy milk", ProjectName: "Home"},
			wantErr:   ErrInvalidVerificationParameters,
		},
		{
			name:      "missing comment",
			setup:     func(f *todoisttest.Fake) {},
			commentID: "nope",
			prefix:    "x",
			cc:        CommentContext{ProjectName: "Home"},
			wantErr:   todoist.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, v := newFixture()
			tt.setup(f)

			res, err := v.Comment(ctx, tt.commentID, tt.prefix, tt.cc)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.EqualError(t, err, tt.wantMsg)
				}
				assert.Nil(t, res)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.commentID, res.Comment.ID)
			assert.NotNil(t, res.Project)
			if tt.wantTask {
				require.NotNil(t, res.Task)
				assert.Equal(t, todoist.ContainerTask, res.Container.Kind)
			} else {
				assert.Nil(t, res.Task)
				assert.Equal(t, todoist.ContainerProject, res.Container.Kind)
			}
		})
	}
}

func TestComment_ContentCheckedBeforeContainer(t *testing.T) {
	f, v := newFixture()
	f.AddTaskCommentFixture("C1", "Get the organic one", "T1")

	_, err := v.Comment(context.Background(), "C1", "Get any", CommentContext{ProjectName: "Home"})

	assert.ErrorIs(t, err, ErrIdentityMismatch)
	assert.Equal(t, 0, f.Calls("GetTask"))
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "short", "short"},
		{"exactly the limit", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"ascii", strings.Repeat("a", 80), strings.Repeat("a", 50)},
		{"bmp runes count once", strings.Repeat("ü", 80), strings.Repeat("ü", 50)},
		{"astral runes count twice", strings.Repeat("😀", 30), strings.Repeat("😀", 25)},
		{"pair straddling the limit is dropped", "a" + strings.Repeat("😀", 30), "a" + strings.Repeat("😀", 24)},
		{"mixed", "Call mum 📞 about " + strings.Repeat("x", 40), "Call mum 📞 about " + strings.Repeat("x", 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.content))
		})
	}
}

func TestComment_AstralPreviewMatches(t *testing.T) {
	f, v := newFixture()
	content := strings.Repeat("🥛", 20) + " oat milk, not the soy one"
	f.AddTaskCommentFixture("C7", content, "T1")

	res, err := v.Comment(context.Background(), "C7", strings.Repeat("🥛", 20)+" oat milk,",
		CommentContext{TaskName: "Buy milk", ProjectName: "Home"})

	require.NoError(t, err)
	assert.Equal(t, content, res.Comment.Content)
}

func TestVerifier_ConcurrentUse(t *testing.T) {
	_, v := newFixture()
	ctx := context.Background()

	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			_, err := v.Task(ctx, "T1", "Buy milk", "Home")
			errs <- err
		}()
	}
	for i := 0; i < 20; i++ {
		assert.NoError(t, <-errs)
	}
}
