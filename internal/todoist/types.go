package todoist

// Due describes when a task is due.
type Due struct {
	Date        string `json:"date"`
	String      string `json:"string,omitempty"`
	Lang        string `json:"lang,omitempty"`
	IsRecurring bool   `json:"is_recurring"`
	Datetime    string `json:"datetime,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

// Deadline is the hard date a task must be done by.
type Deadline struct {
	Date string `json:"date"`
	Lang string `json:"lang,omitempty"`
}

// Duration is the planned length of a task.
type Duration struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"` // "minute" or "day"
}

// Task represents a Todoist task
type Task struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	ProjectID   string    `json:"project_id"`
	SectionID   *string   `json:"section_id"`
	ParentID    *string   `json:"parent_id"`
	Priority    int       `json:"priority"`
	Labels      []string  `json:"labels"`
	Due         *Due      `json:"due"`
	Deadline    *Deadline `json:"deadline"`
	Duration    *Duration `json:"duration"`
	AssigneeID  *string   `json:"responsible_uid"`
	ChildOrder  int       `json:"child_order"`
	Checked     bool      `json:"checked"`
	AddedAt     string    `json:"added_at,omitempty"`
}

// Project represents a Todoist project. Projects form a forest through ParentID.
type Project struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ParentID       *string `json:"parent_id"`
	Color          string  `json:"color"`
	IsFavorite     bool    `json:"is_favorite"`
	ViewStyle      string  `json:"view_style"`
	ChildOrder     int     `json:"child_order"`
	IsShared       bool    `json:"is_shared"`
	IsInboxProject bool    `json:"inbox_project"`
}

// Section represents a section inside a project
type Section struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
	Order     int    `json:"section_order"`
}

// Attachment is a file attached to a comment.
type Attachment struct {
	FileName     string `json:"file_name,omitempty"`
	FileURL      string `json:"file_url"`
	FileType     string `json:"file_type,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
}

// Comment represents a note attached to either a task or a project.
// Use Container to find out which one.
type Comment struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	TaskID     *string     `json:"task_id,omitempty"`
	ItemID     *string     `json:"item_id,omitempty"` // v1 payloads name the task reference item_id
	ProjectID  *string     `json:"project_id,omitempty"`
	PostedAt   string      `json:"posted_at,omitempty"`
	Attachment *Attachment `json:"file_attachment,omitempty"`
}

// ContainerKind tells whether a comment hangs off a task or a project.
type ContainerKind string

const (
	ContainerTask    ContainerKind = "task"
	ContainerProject ContainerKind = "project"
)

// Container identifies the single entity a comment belongs to.
type Container struct {
	Kind ContainerKind
	ID   string
}

// Container resolves the comment's owner. ok is false when the payload names
// both a task and a project, or neither.
func (c *Comment) Container() (Container, bool) {
	taskID := deref(c.TaskID)
	if taskID == "" {
		taskID = deref(c.ItemID)
	}
	projectID := deref(c.ProjectID)

	switch {
	case taskID != "" && projectID == "":
		return Container{Kind: ContainerTask, ID: taskID}, true
	case projectID != "" && taskID == "":
		return Container{Kind: ContainerProject, ID: projectID}, true
	default:
		return Container{}, false
	}
}

// Label represents a personal label. Labels are global, not scoped to a project.
type Label struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Order      int    `json:"order"`
	IsFavorite bool   `json:"is_favorite"`
}

// Collaborator is a user a shared project is shared with.
type Collaborator struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AddTaskArgs holds the fields accepted when creating a task
type AddTaskArgs struct {
	Content      string   `json:"content"`
	Description  string   `json:"description,omitempty"`
	ProjectID    string   `json:"project_id,omitempty"`
	SectionID    string   `json:"section_id,omitempty"`
	ParentID     string   `json:"parent_id,omitempty"`
	AssigneeID   string   `json:"assignee_id,omitempty"`
	Priority     int      `json:"priority,omitempty"`
	Labels       []string `json:"labels,omitempty"`
	DueString    string   `json:"due_string,omitempty"`
	DueLang      string   `json:"due_lang,omitempty"`
	DueDate      string   `json:"due_date,omitempty"`
	DueDatetime  string   `json:"due_datetime,omitempty"`
	DeadlineDate string   `json:"deadline_date,omitempty"`
	DeadlineLang string   `json:"deadline_lang,omitempty"`
	Duration     int      `json:"duration,omitempty"`
	DurationUnit string   `json:"duration_unit,omitempty"`
}

// QuickAddArgs holds the input of the natural language quick add endpoint.
type QuickAddArgs struct {
	Text         string `json:"text"`
	Note         string `json:"note,omitempty"`
	Reminder     string `json:"reminder,omitempty"`
	AutoReminder bool   `json:"auto_reminder,omitempty"`
}

// MoveArgs names the single destination of a move. Exactly one field is set.
type MoveArgs struct {
	ProjectID string `json:"project_id,omitempty"`
	SectionID string `json:"section_id,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
}

// AddProjectArgs holds the fields accepted when creating a project
type AddProjectArgs struct {
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	ParentID   string `json:"parent_id,omitempty"`
	IsFavorite *bool  `json:"is_favorite,omitempty"`
	ViewStyle  string `json:"view_style,omitempty"`
}

// UpdateProjectArgs holds the project fields that can be changed.
type UpdateProjectArgs struct {
	Name       string `json:"name,omitempty"`
	Color      string `json:"color,omitempty"`
	IsFavorite *bool  `json:"is_favorite,omitempty"`
	ViewStyle  string `json:"view_style,omitempty"`
}

// Empty reports whether no field would be changed.
func (a UpdateProjectArgs) Empty() bool {
	return a.Name == "" && a.Color == "" && a.IsFavorite == nil && a.ViewStyle == ""
}

// AddSectionArgs holds the fields accepted when creating a section
type AddSectionArgs struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Order     *int   `json:"order,omitempty"`
}

// AddCommentArgs holds the fields accepted when creating a comment.
// Exactly one of TaskID and ProjectID must be set.
type AddCommentArgs struct {
	TaskID     string      `json:"task_id,omitempty"`
	ProjectID  string      `json:"project_id,omitempty"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// UpdateLabelArgs holds the label fields that can be changed.
type UpdateLabelArgs struct {
	Name       string `json:"name,omitempty"`
	Color      string `json:"color,omitempty"`
	IsFavorite *bool  `json:"is_favorite,omitempty"`
	Order      *int   `json:"order,omitempty"`
}

// Empty reports whether no field would be changed.
func (a UpdateLabelArgs) Empty() bool {
	return a.Name == "" && a.Color == "" && a.IsFavorite == nil && a.Order == nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
