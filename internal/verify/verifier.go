package verify

import (
	"context"
	"errors"
	"unicode/utf16"

	"github.com/teemow/todoistguard/internal/instrumentation"
	"github.com/teemow/todoistguard/internal/logging"
	"github.com/teemow/todoistguard/internal/todoist"
)

// CommentPreviewLength is how many UTF-16 code units of a comment's content
// are compared against the caller's expectation.
const CommentPreviewLength = 50

// Fetcher reads current entity state by ID. todoist.Client implements it.
type Fetcher interface {
	GetTask(ctx context.Context, id string) (*todoist.Task, error)
	GetProject(ctx context.Context, id string) (*todoist.Project, error)
	GetSection(ctx context.Context, id string) (*todoist.Section, error)
	GetComment(ctx context.Context, id string) (*todoist.Comment, error)
	GetLabel(ctx context.Context, id string) (*todoist.Label, error)
}

// TaskResult is a verified task and the project it lives in.
type TaskResult struct {
	Task    *todoist.Task
	Project *todoist.Project
}

// ProjectResult is a verified project.
type ProjectResult struct {
	Project *todoist.Project
}

// SectionResult is a verified section and its project.
type SectionResult struct {
	Section *todoist.Section
	Project *todoist.Project
}

// CommentResult is a verified comment. Task is nil for project comments.
type CommentResult struct {
	Comment   *todoist.Comment
	Container todoist.Container
	Task      *todoist.Task
	Project   *todoist.Project
}

// LabelResult is a verified label.
type LabelResult struct {
	Label *todoist.Label
}

// CommentContext carries the names the caller believes a comment's
// container has. A task comment needs both, a project comment only ProjectName.
type CommentContext struct {
	TaskName    string
	ProjectName string
}

// Verifier checks that an entity fetched by ID carries the names the caller
// expects. It keeps no state between calls and is safe for concurrent use.
type Verifier struct {
	fetcher Fetcher
	logger  logging.Logger
	metrics *instrumentation.Metrics
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the logger used for debug records of each check.
func WithLogger(l logging.Logger) Option {
	return func(v *Verifier) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithMetrics counts each check in verification_checks_total.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(v *Verifier) {
		v.metrics = m
	}
}

// New creates a Verifier reading through f.
func New(f Fetcher, opts ...Option) *Verifier {
	v := &Verifier{
		fetcher: f,
		logger:  logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// taskSubjects are the mismatch headlines of one task chain flavour.
type taskSubjects struct {
	task    string
	project string
}

var (
	plainTask   = taskSubjects{task: "Task name mismatch", project: "Project name mismatch"}
	parentTask  = taskSubjects{task: "Parent task name mismatch", project: "Project name mismatch for parent task"}
	commentTask = taskSubjects{task: "Task name mismatch for comment", project: "Project name mismatch for comment"}
)

// Task verifies that taskID has content expectedContent and lives in a
// project named expectedProjectName.
func (v *Verifier) Task(ctx context.Context, taskID, expectedContent, expectedProjectName string) (*TaskResult, error) {
	res, err := v.taskChain(ctx, taskID, expectedContent, expectedProjectName, plainTask)
	v.record(ctx, instrumentation.EntityTask, taskID, err)
	return res, err
}

// ParentTask is Task with messages naming the parent task.
func (v *Verifier) ParentTask(ctx context.Context, parentID, expectedContent, expectedProjectName string) (*TaskResult, error) {
	res, err := v.taskChain(ctx, parentID, expectedContent, expectedProjectName, parentTask)
	v.record(ctx, instrumentation.EntityTask, parentID, err)
	return res, err
}

// Project verifies that projectID is named expectedName.
func (v *Verifier) Project(ctx context.Context, projectID, expectedName string) (*ProjectResult, error) {
	project, err := v.project(ctx, projectID, expectedName, "Project name mismatch")
	v.record(ctx, instrumentation.EntityProject, projectID, err)
	if err != nil {
		return nil, err
	}
	return &ProjectResult{Project: project}, nil
}

// ParentProject is Project with messages naming the parent project.
func (v *Verifier) ParentProject(ctx context.Context, parentID, expectedName string) (*ProjectResult, error) {
	project, err := v.project(ctx, parentID, expectedName, "Parent project name mismatch")
	v.record(ctx, instrumentation.EntityProject, parentID, err)
	if err != nil {
		return nil, err
	}
	return &ProjectResult{Project: project}, nil
}

// Section verifies that sectionID is named expectedName and belongs to a
// project named expectedProjectName.
func (v *Verifier) Section(ctx context.Context, sectionID, expectedName, expectedProjectName string) (*SectionResult, error) {
	res, err := v.section(ctx, sectionID, expectedName, expectedProjectName)
	v.record(ctx, instrumentation.EntitySection, sectionID, err)
	return res, err
}

func (v *Verifier) section(ctx context.Context, sectionID, expectedName, expectedProjectName string) (*SectionResult, error) {
	section, err := v.fetcher.GetSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	project, err := v.fetcher.GetProject(ctx, section.ProjectID)
	if err != nil {
		return nil, err
	}

	if section.Name != expectedName {
		return nil, mismatch(instrumentation.EntitySection, "name", "Section name mismatch", expectedName, section.Name)
	}
	if project.Name != expectedProjectName {
		return nil, mismatch(instrumentation.EntitySection, "project_name", "Project name mismatch", expectedProjectName, project.Name)
	}
	return &SectionResult{Section: section, Project: project}, nil
}

// Label verifies that labelID is named expectedName.
func (v *Verifier) Label(ctx context.Context, labelID, expectedName string) (*LabelResult, error) {
	res, err := v.label(ctx, labelID, expectedName)
	v.record(ctx, instrumentation.EntityLabel, labelID, err)
	return res, err
}

func (v *Verifier) label(ctx context.Context, labelID, expectedName string) (*LabelResult, error) {
	label, err := v.fetcher.GetLabel(ctx, labelID)
	if err != nil {
		return nil, err
	}
	if label.Name != expectedName {
		return nil, mismatch(instrumentation.EntityLabel, "name", "Label name mismatch", expectedName, label.Name)
	}
	return &LabelResult{Label: label}, nil
}

// Comment verifies that the first 50 characters of commentID's content equal
// expectedPrefix, then verifies the comment's container against cc.
func (v *Verifier) Comment(ctx context.Context, commentID, expectedPrefix string, cc CommentContext) (*CommentResult, error) {
	res, err := v.comment(ctx, commentID, expectedPrefix, cc)
	v.record(ctx, instrumentation.EntityComment, commentID, err)
	return res, err
}

func (v *Verifier) comment(ctx context.Context, commentID, expectedPrefix string, cc CommentContext) (*CommentResult, error) {
	comment, err := v.fetcher.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	preview := Preview(comment.Content)
	if preview != expectedPrefix {
		return nil, mismatch(instrumentation.EntityComment, "content", "Comment content mismatch", expectedPrefix, preview)
	}

	container, ok := comment.Container()
	if !ok {
		return nil, NewParameterError(ErrInvalidVerificationParameters,
			"Invalid comment %s: it must belong to exactly one task or project", commentID)
	}

	switch container.Kind {
	case todoist.ContainerTask:
		if cc.TaskName == "" || cc.ProjectName == "" {
			return nil, invalidCommentParameters()
		}
		tr, err := v.taskChain(ctx, container.ID, cc.TaskName, cc.ProjectName, commentTask)
		if err != nil {
			return nil, err
		}
		return &CommentResult{Comment: comment, Container: container, Task: tr.Task, Project: tr.Project}, nil

	default:
		if cc.TaskName != "" || cc.ProjectName == "" {
			return nil, invalidCommentParameters()
		}
		project, err := v.project(ctx, container.ID, cc.ProjectName, "Project name mismatch for comment")
		if err != nil {
			return nil, err
		}
		return &CommentResult{Comment: comment, Container: container, Project: project}, nil
	}
}

func (v *Verifier) taskChain(ctx context.Context, taskID, expectedContent, expectedProjectName string, subjects taskSubjects) (*TaskResult, error) {
	task, err := v.fetcher.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	project, err := v.fetcher.GetProject(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}

	if task.Content != expectedContent {
		return nil, mismatch(instrumentation.EntityTask, "content", subjects.task, expectedContent, task.Content)
	}
	if project.Name != expectedProjectName {
		return nil, mismatch(instrumentation.EntityTask, "project_name", subjects.project, expectedProjectName, project.Name)
	}
	return &TaskResult{Task: task, Project: project}, nil
}

func (v *Verifier) project(ctx context.Context, projectID, expectedName, subject string) (*todoist.Project, error) {
	project, err := v.fetcher.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Name != expectedName {
		return nil, mismatch(instrumentation.EntityProject, "name", subject, expectedName, project.Name)
	}
	return project, nil
}

func (v *Verifier) record(ctx context.Context, entity, id string, err error) {
	result := instrumentation.VerificationPassed
	switch {
	case err == nil:
	case errors.Is(err, ErrIdentityMismatch):
		result = instrumentation.VerificationMismatch
	default:
		result = instrumentation.VerificationError
	}

	kind := KindOf(err)
	v.metrics.RecordVerification(ctx, entity, result, kind)
	if err != nil {
		v.logger.Debug("verification failed", logging.KeyEntity, entity, logging.KeyEntityID, id,
			logging.KeyErrorKind, kind, logging.KeyError, err.Error())
		return
	}
	v.logger.Debug("verification passed", logging.KeyEntity, entity, logging.KeyEntityID, id)
}

// Preview returns the part of a comment that verification compares: the
// first 50 UTF-16 code units of content, the same prefix a JavaScript
// substring(0, 50) yields. A surrogate pair that would straddle the limit is
// left out whole, so the preview is always valid UTF-8.
func Preview(content string) string {
	units := 0
	for i, r := range content {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > CommentPreviewLength {
			return content[:i]
		}
		units += n
	}
	return content
}

func mismatch(entity, field, subject, expected, actual string) *MismatchError {
	return &MismatchError{
		Entity:   entity,
		Field:    field,
		Subject:  subject,
		Expected: expected,
		Actual:   actual,
	}
}

func invalidCommentParameters() *ParameterError {
	return NewParameterError(ErrInvalidVerificationParameters,
		"Invalid comment validation parameters: must provide either (taskName + projectName) or just projectName")
}
