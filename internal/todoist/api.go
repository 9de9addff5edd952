package todoist

import "context"

// API is the set of Todoist operations the MCP tools use. Client implements it;
// tests substitute in-memory fakes.
type API interface {
	GetTask(ctx context.Context, id string) (*Task, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	GetSection(ctx context.Context, id string) (*Section, error)
	GetComment(ctx context.Context, id string) (*Comment, error)
	GetLabel(ctx context.Context, id string) (*Label, error)

	ListTasks(ctx context.Context, projectID, cursor string, limit int) (Page[Task], error)
	FilterTasks(ctx context.Context, query, cursor string) (Page[Task], error)
	ListProjects(ctx context.Context, cursor string) (Page[Project], error)
	ListSections(ctx context.Context, projectID, cursor string) (Page[Section], error)
	ListComments(ctx context.Context, container Container, cursor string) (Page[Comment], error)
	ListCollaborators(ctx context.Context, projectID, cursor string) (Page[Collaborator], error)

	AddTask(ctx context.Context, args AddTaskArgs) (*Task, error)
	QuickAddTask(ctx context.Context, args QuickAddArgs) (*Task, error)
	CloseTask(ctx context.Context, id string) error
	ReopenTask(ctx context.Context, id string) error
	DeleteTask(ctx context.Context, id string) error
	MoveTasks(ctx context.Context, ids []string, args MoveArgs) ([]Task, error)

	AddProject(ctx context.Context, args AddProjectArgs) (*Project, error)
	UpdateProject(ctx context.Context, id string, args UpdateProjectArgs) (*Project, error)
	DeleteProject(ctx context.Context, id string) error

	AddSection(ctx context.Context, args AddSectionArgs) (*Section, error)
	UpdateSection(ctx context.Context, id, name string) (*Section, error)
	DeleteSection(ctx context.Context, id string) error

	AddComment(ctx context.Context, args AddCommentArgs) (*Comment, error)
	UpdateComment(ctx context.Context, id, content string) (*Comment, error)
	DeleteComment(ctx context.Context, id string) error

	UpdateLabel(ctx context.Context, id string, args UpdateLabelArgs) (*Label, error)
	DeleteLabel(ctx context.Context, id string) error
}
