// Package todoisttest provides an in-memory todoist.API for tests.
package todoisttest

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/teemow/todoistguard/internal/todoist"
)

// Fake is an in-memory todoist.API. It counts every call by method name and
// can be told to fail a method with Fail.
type Fake struct {
	mu sync.Mutex

	Tasks         map[string]*todoist.Task
	Projects      map[string]*todoist.Project
	Sections      map[string]*todoist.Section
	Comments      map[string]*todoist.Comment
	Labels        map[string]*todoist.Label
	Collaborators map[string][]todoist.Collaborator

	// Moves records every MoveTasks call in order.
	Moves []Move

	calls    map[string]int
	errs     map[string]error
	moveErrs map[string]error
	nextID   int
}

// Move is one recorded MoveTasks call.
type Move struct {
	IDs  []string
	Args todoist.MoveArgs
}

var _ todoist.API = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Tasks:         make(map[string]*todoist.Task),
		Projects:      make(map[string]*todoist.Project),
		Sections:      make(map[string]*todoist.Section),
		Comments:      make(map[string]*todoist.Comment),
		Labels:        make(map[string]*todoist.Label),
		Collaborators: make(map[string][]todoist.Collaborator),
		calls:         make(map[string]int),
		errs:          make(map[string]error),
		moveErrs:      make(map[string]error),
		nextID:        1000,
	}
}

// AddProjectFixture stores a project and returns it.
func (f *Fake) AddProjectFixture(id, name string) *todoist.Project {
	p := &todoist.Project{ID: id, Name: name, Color: "charcoal", ViewStyle: "list"}
	f.Projects[id] = p
	return p
}

// AddTaskFixture stores a task in projectID and returns it.
func (f *Fake) AddTaskFixture(id, content, projectID string, priority int) *todoist.Task {
	t := &todoist.Task{ID: id, Content: content, ProjectID: projectID, Priority: priority, Labels: []string{}}
	f.Tasks[id] = t
	return t
}

// AddSectionFixture stores a section in projectID and returns it.
func (f *Fake) AddSectionFixture(id, name, projectID string) *todoist.Section {
	s := &todoist.Section{ID: id, Name: name, ProjectID: projectID}
	f.Sections[id] = s
	return s
}

// AddTaskCommentFixture stores a comment on taskID.
func (f *Fake) AddTaskCommentFixture(id, content, taskID string) *todoist.Comment {
	c := &todoist.Comment{ID: id, Content: content, TaskID: &taskID}
	f.Comments[id] = c
	return c
}

// AddProjectCommentFixture stores a comment on projectID.
func (f *Fake) AddProjectCommentFixture(id, content, projectID string) *todoist.Comment {
	c := &todoist.Comment{ID: id, Content: content, ProjectID: &projectID}
	f.Comments[id] = c
	return c
}

// AddLabelFixture stores a label.
func (f *Fake) AddLabelFixture(id, name string) *todoist.Label {
	l := &todoist.Label{ID: id, Name: name, Color: "charcoal"}
	f.Labels[id] = l
	return l
}

// Fail makes every later call of method return err.
func (f *Fake) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[method] = err
}

// FailMove makes MoveTasks stop with err when it reaches task id. Tasks
// before it in the batch stay moved.
func (f *Fake) FailMove(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moveErrs[id] = err
}

// Calls returns how often method was called.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// MutatingCalls returns the number of calls that would change state.
func (f *Fake) MutatingCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for method, c := range f.calls {
		switch method {
		case "GetTask", "GetProject", "GetSection", "GetComment", "GetLabel",
			"ListTasks", "FilterTasks", "ListProjects", "ListSections", "ListComments", "ListCollaborators":
		default:
			n += c
		}
	}
	return n
}

func (f *Fake) enter(method string) error {
	f.calls[method]++
	return f.errs[method]
}

func (f *Fake) newID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func notFound(op string) error {
	return &todoist.APIError{Op: op, StatusCode: http.StatusNotFound, Message: "not found"}
}

func (f *Fake) GetTask(_ context.Context, id string) (*todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetTask"); err != nil {
		return nil, err
	}
	t, ok := f.Tasks[id]
	if !ok {
		return nil, notFound("get task")
	}
	cp := *t
	return &cp, nil
}

func (f *Fake) GetProject(_ context.Context, id string) (*todoist.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetProject"); err != nil {
		return nil, err
	}
	p, ok := f.Projects[id]
	if !ok {
		return nil, notFound("get project")
	}
	cp := *p
	return &cp, nil
}

func (f *Fake) GetSection(_ context.Context, id string) (*todoist.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetSection"); err != nil {
		return nil, err
	}
	s, ok := f.Sections[id]
	if !ok {
		return nil, notFound("get section")
	}
	cp := *s
	return &cp, nil
}

func (f *Fake) GetComment(_ context.Context, id string) (*todoist.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetComment"); err != nil {
		return nil, err
	}
	c, ok := f.Comments[id]
	if !ok {
		return nil, notFound("get comment")
	}
	cp := *c
	return &cp, nil
}

func (f *Fake) GetLabel(_ context.Context, id string) (*todoist.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetLabel"); err != nil {
		return nil, err
	}
	l, ok := f.Labels[id]
	if !ok {
		return nil, notFound("get label")
	}
	cp := *l
	return &cp, nil
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f *Fake) ListTasks(_ context.Context, projectID, _ string, limit int) (todoist.Page[todoist.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListTasks"); err != nil {
		return todoist.Page[todoist.Task]{}, err
	}
	var out []todoist.Task
	for _, id := range sortedKeys(f.Tasks) {
		if t := f.Tasks[id]; projectID == "" || t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return todoist.Page[todoist.Task]{Results: out}, nil
}

// FilterTasks treats the query as a label name, or "all".
func (f *Fake) FilterTasks(_ context.Context, query, _ string) (todoist.Page[todoist.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("FilterTasks"); err != nil {
		return todoist.Page[todoist.Task]{}, err
	}
	var out []todoist.Task
	for _, id := range sortedKeys(f.Tasks) {
		t := f.Tasks[id]
		if query == "all" {
			out = append(out, *t)
			continue
		}
		for _, l := range t.Labels {
			if "@"+l == query {
				out = append(out, *t)
				break
			}
		}
	}
	return todoist.Page[todoist.Task]{Results: out}, nil
}

func (f *Fake) ListProjects(_ context.Context, _ string) (todoist.Page[todoist.Project], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListProjects"); err != nil {
		return todoist.Page[todoist.Project]{}, err
	}
	var out []todoist.Project
	for _, id := range sortedKeys(f.Projects) {
		out = append(out, *f.Projects[id])
	}
	return todoist.Page[todoist.Project]{Results: out}, nil
}

func (f *Fake) ListSections(_ context.Context, projectID, _ string) (todoist.Page[todoist.Section], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListSections"); err != nil {
		return todoist.Page[todoist.Section]{}, err
	}
	var out []todoist.Section
	for _, id := range sortedKeys(f.Sections) {
		if s := f.Sections[id]; s.ProjectID == projectID {
			out = append(out, *s)
		}
	}
	return todoist.Page[todoist.Section]{Results: out}, nil
}

func (f *Fake) ListComments(_ context.Context, container todoist.Container, _ string) (todoist.Page[todoist.Comment], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListComments"); err != nil {
		return todoist.Page[todoist.Comment]{}, err
	}
	var out []todoist.Comment
	for _, id := range sortedKeys(f.Comments) {
		c := f.Comments[id]
		if got, ok := c.Container(); ok && got == container {
			out = append(out, *c)
		}
	}
	return todoist.Page[todoist.Comment]{Results: out}, nil
}

func (f *Fake) ListCollaborators(_ context.Context, projectID, _ string) (todoist.Page[todoist.Collaborator], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListCollaborators"); err != nil {
		return todoist.Page[todoist.Collaborator]{}, err
	}
	return todoist.Page[todoist.Collaborator]{Results: append([]todoist.Collaborator(nil), f.Collaborators[projectID]...)}, nil
}

func (f *Fake) AddTask(_ context.Context, args todoist.AddTaskArgs) (*todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddTask"); err != nil {
		return nil, err
	}
	projectID := args.ProjectID
	if projectID == "" {
		projectID = "inbox"
	}
	t := &todoist.Task{
		ID:          f.newID(),
		Content:     args.Content,
		Description: args.Description,
		ProjectID:   projectID,
		Priority:    args.Priority,
		Labels:      append([]string{}, args.Labels...),
	}
	if t.Priority == 0 {
		t.Priority = 1
	}
	if args.ParentID != "" {
		parentID := args.ParentID
		t.ParentID = &parentID
	}
	if args.DueString != "" || args.DueDate != "" || args.DueDatetime != "" {
		t.Due = &todoist.Due{String: args.DueString, Date: args.DueDate, Datetime: args.DueDatetime, Lang: args.DueLang}
	}
	if args.Duration > 0 {
		t.Duration = &todoist.Duration{Amount: args.Duration, Unit: args.DurationUnit}
	}
	f.Tasks[t.ID] = t
	cp := *t
	return &cp, nil
}

// QuickAddTask files the task into the project whose name follows a '#'
// in the text, or into the inbox.
func (f *Fake) QuickAddTask(_ context.Context, args todoist.QuickAddArgs) (*todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("QuickAddTask"); err != nil {
		return nil, err
	}
	projectID := "inbox"
	for _, id := range sortedKeys(f.Projects) {
		name := f.Projects[id].Name
		if strings.Contains(args.Text, "#"+name) {
			projectID = id
		}
	}
	t := &todoist.Task{ID: f.newID(), Content: args.Text, ProjectID: projectID, Priority: 1, Labels: []string{}}
	f.Tasks[t.ID] = t
	cp := *t
	return &cp, nil
}

func (f *Fake) CloseTask(_ context.Context, id string) error {
	return f.mutateTask("CloseTask", id, func(t *todoist.Task) { t.Checked = true })
}

func (f *Fake) ReopenTask(_ context.Context, id string) error {
	return f.mutateTask("ReopenTask", id, func(t *todoist.Task) { t.Checked = false })
}

func (f *Fake) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteTask"); err != nil {
		return err
	}
	if _, ok := f.Tasks[id]; !ok {
		return notFound("delete task")
	}
	delete(f.Tasks, id)
	return nil
}

func (f *Fake) mutateTask(method, id string, fn func(*todoist.Task)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(method); err != nil {
		return err
	}
	t, ok := f.Tasks[id]
	if !ok {
		return notFound(method)
	}
	fn(t)
	return nil
}

func (f *Fake) MoveTasks(_ context.Context, ids []string, args todoist.MoveArgs) ([]todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("MoveTasks"); err != nil {
		return nil, err
	}
	f.Moves = append(f.Moves, Move{IDs: append([]string(nil), ids...), Args: args})

	moved := make([]todoist.Task, 0, len(ids))
	for _, id := range ids {
		if err := f.moveErrs[id]; err != nil {
			return moved, fmt.Errorf("failed to move task %s: %w", id, err)
		}
		t, ok := f.Tasks[id]
		if !ok {
			return moved, fmt.Errorf("failed to move task %s: %w", id, notFound("move task"))
		}
		switch {
		case args.ProjectID != "":
			t.ProjectID, t.SectionID, t.ParentID = args.ProjectID, nil, nil
		case args.SectionID != "":
			sectionID := args.SectionID
			t.SectionID, t.ParentID = &sectionID, nil
			if s, ok := f.Sections[sectionID]; ok {
				t.ProjectID = s.ProjectID
			}
		case args.ParentID != "":
			parentID := args.ParentID
			t.ParentID = &parentID
			if p, ok := f.Tasks[parentID]; ok {
				t.ProjectID = p.ProjectID
			}
		}
		moved = append(moved, *t)
	}
	return moved, nil
}

func (f *Fake) AddProject(_ context.Context, args todoist.AddProjectArgs) (*todoist.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddProject"); err != nil {
		return nil, err
	}
	p := &todoist.Project{ID: f.newID(), Name: args.Name, Color: args.Color, ViewStyle: args.ViewStyle}
	if p.Color == "" {
		p.Color = "charcoal"
	}
	if p.ViewStyle == "" {
		p.ViewStyle = "list"
	}
	if args.IsFavorite != nil {
		p.IsFavorite = *args.IsFavorite
	}
	if args.ParentID != "" {
		parentID := args.ParentID
		p.ParentID = &parentID
	}
	f.Projects[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *Fake) UpdateProject(_ context.Context, id string, args todoist.UpdateProjectArgs) (*todoist.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateProject"); err != nil {
		return nil, err
	}
	p, ok := f.Projects[id]
	if !ok {
		return nil, notFound("update project")
	}
	if args.Name != "" {
		p.Name = args.Name
	}
	if args.Color != "" {
		p.Color = args.Color
	}
	if args.IsFavorite != nil {
		p.IsFavorite = *args.IsFavorite
	}
	if args.ViewStyle != "" {
		p.ViewStyle = args.ViewStyle
	}
	cp := *p
	return &cp, nil
}

func (f *Fake) DeleteProject(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteProject"); err != nil {
		return err
	}
	if _, ok := f.Projects[id]; !ok {
		return notFound("delete project")
	}
	delete(f.Projects, id)
	return nil
}

func (f *Fake) AddSection(_ context.Context, args todoist.AddSectionArgs) (*todoist.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddSection"); err != nil {
		return nil, err
	}
	s := &todoist.Section{ID: f.newID(), Name: args.Name, ProjectID: args.ProjectID}
	if args.Order != nil {
		s.Order = *args.Order
	}
	f.Sections[s.ID] = s
	cp := *s
	return &cp, nil
}

func (f *Fake) UpdateSection(_ context.Context, id, name string) (*todoist.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateSection"); err != nil {
		return nil, err
	}
	s, ok := f.Sections[id]
	if !ok {
		return nil, notFound("update section")
	}
	s.Name = name
	cp := *s
	return &cp, nil
}

func (f *Fake) DeleteSection(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteSection"); err != nil {
		return err
	}
	if _, ok := f.Sections[id]; !ok {
		return notFound("delete section")
	}
	delete(f.Sections, id)
	return nil
}

func (f *Fake) AddComment(_ context.Context, args todoist.AddCommentArgs) (*todoist.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddComment"); err != nil {
		return nil, err
	}
	if (args.TaskID == "") == (args.ProjectID == "") {
		return nil, fmt.Errorf("add comment: exactly one of task_id and project_id is required")
	}
	c := &todoist.Comment{ID: f.newID(), Content: args.Content, Attachment: args.Attachment}
	if args.TaskID != "" {
		taskID := args.TaskID
		c.TaskID = &taskID
	} else {
		projectID := args.ProjectID
		c.ProjectID = &projectID
	}
	f.Comments[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f *Fake) UpdateComment(_ context.Context, id, content string) (*todoist.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateComment"); err != nil {
		return nil, err
	}
	c, ok := f.Comments[id]
	if !ok {
		return nil, notFound("update comment")
	}
	c.Content = content
	cp := *c
	return &cp, nil
}

func (f *Fake) DeleteComment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteComment"); err != nil {
		return err
	}
	if _, ok := f.Comments[id]; !ok {
		return notFound("delete comment")
	}
	delete(f.Comments, id)
	return nil
}

func (f *Fake) UpdateLabel(_ context.Context, id string, args todoist.UpdateLabelArgs) (*todoist.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateLabel"); err != nil {
		return nil, err
	}
	l, ok := f.Labels[id]
	if !ok {
		return nil, notFound("update label")
	}
	if args.Name != "" {
		l.Name = args.Name
	}
	if args.Color != "" {
		l.Color = args.Color
	}
	if args.IsFavorite != nil {
		l.IsFavorite = *args.IsFavorite
	}
	if args.Order != nil {
		l.Order = *args.Order
	}
	cp := *l
	return &cp, nil
}

func (f *Fake) DeleteLabel(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteLabel"); err != nil {
		return err
	}
	if _, ok := f.Labels[id]; !ok {
		return notFound("delete label")
	}
	delete(f.Labels, id)
	return nil
}
