package todoist

import (
	"context"
	"fmt"
	"net/http"
)

// GetTask retrieves a task by ID
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, "get task", http.MethodGet, itemPath("tasks", id), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns one page of the active tasks in a project
func (c *Client) ListTasks(ctx context.Context, projectID, cursor string, limit int) (Page[Task], error) {
	q := cursorQuery(cursor, limit)
	if projectID != "" {
		q.Set("project_id", projectID)
	}

	var page Page[Task]
	err := c.do(ctx, "list tasks", http.MethodGet, "tasks", q, nil, &page)
	return page, err
}

// FilterTasks returns one page of tasks matching a Todoist filter query
func (c *Client) FilterTasks(ctx context.Context, query, cursor string) (Page[Task], error) {
	q := cursorQuery(cursor, 0)
	q.Set("query", query)

	var page Page[Task]
	err := c.do(ctx, "filter tasks", http.MethodGet, "tasks/filter", q, nil, &page)
	return page, err
}

// AddTask creates a new task
func (c *Client) AddTask(ctx context.Context, args AddTaskArgs) (*Task, error) {
	var task Task
	if err := c.do(ctx, "add task", http.MethodPost, "tasks", nil, args, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// QuickAddTask creates a task from natural language text, letting Todoist parse
// dates, projects and labels.
func (c *Client) QuickAddTask(ctx context.Context, args QuickAddArgs) (*Task, error) {
	var task Task
	if err := c.do(ctx, "quick add task", http.MethodPost, "tasks/quick", nil, args, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CloseTask completes a task
func (c *Client) CloseTask(ctx context.Context, id string) error {
	return c.do(ctx, "close task", http.MethodPost, itemPath("tasks", id, "close"), nil, nil, nil)
}

// ReopenTask reopens a completed task
func (c *Client) ReopenTask(ctx context.Context, id string) error {
	return c.do(ctx, "reopen task", http.MethodPost, itemPath("tasks", id, "reopen"), nil, nil, nil)
}

// DeleteTask deletes a task and its subtasks
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, itemPath("tasks", id), nil, nil, nil)
}

// MoveTasks moves each task to the destination in args, in order. It stops at
// the first failure and returns the tasks moved before it together with an
// error naming the failed task.
func (c *Client) MoveTasks(ctx context.Context, ids []string, args MoveArgs) ([]Task, error) {
	moved := make([]Task, 0, len(ids))
	for _, id := range ids {
		task, err := c.MoveTask(ctx, id, args)
		if err != nil {
			return moved, fmt.Errorf("failed to move task %s: %w", id, err)
		}
		moved = append(moved, *task)
	}
	return moved, nil
}

// MoveTask moves one task to a project, a section or under a parent task
func (c *Client) MoveTask(ctx context.Context, id string, args MoveArgs) (*Task, error) {
	var task Task
	if err := c.do(ctx, "move task", http.MethodPost, itemPath("tasks", id, "move"), nil, args, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetProject retrieves a project by ID
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var project Project
	if err := c.do(ctx, "get project", http.MethodGet, itemPath("projects", id), nil, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListProjects returns one page of the user's projects
func (c *Client) ListProjects(ctx context.Context, cursor string) (Page[Project], error) {
	var page Page[Project]
	err := c.do(ctx, "list projects", http.MethodGet, "projects", cursorQuery(cursor, 0), nil, &page)
	return page, err
}

// ListCollaborators returns one page of the people a project is shared with
func (c *Client) ListCollaborators(ctx context.Context, projectID, cursor string) (Page[Collaborator], error) {
	var page Page[Collaborator]
	err := c.do(ctx, "list collaborators", http.MethodGet, itemPath("projects", projectID, "collaborators"),
		cursorQuery(cursor, 0), nil, &page)
	return page, err
}

// AddProject creates a new project
func (c *Client) AddProject(ctx context.Context, args AddProjectArgs) (*Project, error) {
	var project Project
	if err := c.do(ctx, "add project", http.MethodPost, "projects", nil, args, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject changes a project's attributes
func (c *Client) UpdateProject(ctx context.Context, id string, args UpdateProjectArgs) (*Project, error) {
	var project Project
	if err := c.do(ctx, "update project", http.MethodPost, itemPath("projects", id), nil, args, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project with all its sections and tasks
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, "delete project", http.MethodDelete, itemPath("projects", id), nil, nil, nil)
}

// GetSection retrieves a section by ID
func (c *Client) GetSection(ctx context.Context, id string) (*Section, error) {
	var section Section
	if err := c.do(ctx, "get section", http.MethodGet, itemPath("sections", id), nil, nil, &section); err != nil {
		return nil, err
	}
	return &section, nil
}

// ListSections returns one page of a project's sections
func (c *Client) ListSections(ctx context.Context, projectID, cursor string) (Page[Section], error) {
	q := cursorQuery(cursor, 0)
	q.Set("project_id", projectID)

	var page Page[Section]
	err := c.do(ctx, "list sections", http.MethodGet, "sections", q, nil, &page)
	return page, err
}

// AddSection creates a section in a project
func (c *Client) AddSection(ctx context.Context, args AddSectionArgs) (*Section, error) {
	var section Section
	if err := c.do(ctx, "add section", http.MethodPost, "sections", nil, args, &section); err != nil {
		return nil, err
	}
	return &section, nil
}

// UpdateSection renames a section
func (c *Client) UpdateSection(ctx context.Context, id, name string) (*Section, error) {
	var section Section
	body := map[string]string{"name": name}
	if err := c.do(ctx, "update section", http.MethodPost, itemPath("sections", id), nil, body, &section); err != nil {
		return nil, err
	}
	return &section, nil
}

// DeleteSection deletes a section and its tasks
func (c *Client) DeleteSection(ctx context.Context, id string) error {
	return c.do(ctx, "delete section", http.MethodDelete, itemPath("sections", id), nil, nil, nil)
}

// GetComment retrieves a comment by ID
func (c *Client) GetComment(ctx context.Context, id string) (*Comment, error) {
	var comment Comment
	if err := c.do(ctx, "get comment", http.MethodGet, itemPath("comments", id), nil, nil, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns one page of the comments on a task or project
func (c *Client) ListComments(ctx context.Context, container Container, cursor string) (Page[Comment], error) {
	q := cursorQuery(cursor, 0)
	switch container.Kind {
	case ContainerTask:
		q.Set("task_id", container.ID)
	case ContainerProject:
		q.Set("project_id", container.ID)
	default:
		return Page[Comment]{}, fmt.Errorf("list comments: unknown container kind %q", container.Kind)
	}

	var page Page[Comment]
	err := c.do(ctx, "list comments", http.MethodGet, "comments", q, nil, &page)
	return page, err
}

// AddComment posts a comment on a task or project
func (c *Client) AddComment(ctx context.Context, args AddCommentArgs) (*Comment, error) {
	if (args.TaskID == "") == (args.ProjectID == "") {
		return nil, fmt.Errorf("add comment: exactly one of task ID and project ID is required")
	}
	var comment Comment
	if err := c.do(ctx, "add comment", http.MethodPost, "comments", nil, args, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment replaces a comment's content
func (c *Client) UpdateComment(ctx context.Context, id, content string) (*Comment, error) {
	var comment Comment
	body := map[string]string{"content": content}
	if err := c.do(ctx, "update comment", http.MethodPost, itemPath("comments", id), nil, body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment deletes a comment
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, "delete comment", http.MethodDelete, itemPath("comments", id), nil, nil, nil)
}

// GetLabel retrieves a personal label by ID
func (c *Client) GetLabel(ctx context.Context, id string) (*Label, error) {
	var label Label
	if err := c.do(ctx, "get label", http.MethodGet, itemPath("labels", id), nil, nil, &label); err != nil {
		return nil, err
	}
	return &label, nil
}

// UpdateLabel changes a label's attributes
func (c *Client) UpdateLabel(ctx context.Context, id string, args UpdateLabelArgs) (*Label, error) {
	var label Label
	if err := c.do(ctx, "update label", http.MethodPost, itemPath("labels", id), nil, args, &label); err != nil {
		return nil, err
	}
	return &label, nil
}

// DeleteLabel deletes a personal label and removes it from all tasks
func (c *Client) DeleteLabel(ctx context.Context, id string) error {
	return c.do(ctx, "delete label", http.MethodDelete, itemPath("labels", id), nil, nil, nil)
}
