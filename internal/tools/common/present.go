package common

import (
	"github.com/teemow/todoistguard/internal/priority"
	"github.com/teemow/todoistguard/internal/todoist"
)

// Default field sets for list tools when the caller does not pick fields.
var (
	DefaultTaskFields    = []string{"id", "content", "description", "due", "priority", "labels", "projectId", "sectionId", "parentId"}
	DefaultProjectFields = []string{"id", "name", "parentId"}
	DefaultSectionFields = []string{"id", "projectId", "name"}
)

// FilterFields keeps the requested fields that entity carries. No fields
// means all of them.
func FilterFields(entity map[string]any, fields []string) map[string]any {
	if entity == nil {
		return nil
	}
	out := make(map[string]any, len(entity))
	if len(fields) == 0 {
		for k, v := range entity {
			out[k] = v
		}
		return out
	}
	for _, f := range fields {
		if v, ok := entity[f]; ok {
			out[f] = v
		}
	}
	return out
}

// PresentTask renders a task for the agent: filtered fields with the
// priority shown as a category.
func PresentTask(t todoist.Task, fields []string) map[string]any {
	return priority.ProjectEntity(FilterFields(TaskMap(t), fields))
}

// PresentTasks renders a list of tasks.
func PresentTasks(tasks []todoist.Task, fields []string) []map[string]any {
	out := make([]map[string]any, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, PresentTask(t, fields))
	}
	return out
}

// TaskMap converts a task to its camelCase wire shape.
func TaskMap(t todoist.Task) map[string]any {
	m := map[string]any{
		"id":          t.ID,
		"content":     t.Content,
		"description": t.Description,
		"projectId":   t.ProjectID,
		"sectionId":   optional(t.SectionID),
		"parentId":    optional(t.ParentID),
		"priority":    t.Priority,
		"labels":      labels(t.Labels),
		"due":         nil,
		"deadline":    nil,
		"duration":    nil,
		"assigneeId":  optional(t.AssigneeID),
		"childOrder":  t.ChildOrder,
		"isCompleted": t.Checked,
	}
	if t.Due != nil {
		due := map[string]any{
			"date":        t.Due.Date,
			"string":      t.Due.String,
			"isRecurring": t.Due.IsRecurring,
		}
		if t.Due.Datetime != "" {
			due["datetime"] = t.Due.Datetime
		}
		if t.Due.Timezone != "" {
			due["timezone"] = t.Due.Timezone
		}
		m["due"] = due
	}
	if t.Deadline != nil {
		m["deadline"] = map[string]any{"date": t.Deadline.Date}
	}
	if t.Duration != nil {
		m["duration"] = map[string]any{"amount": t.Duration.Amount, "unit": t.Duration.Unit}
	}
	if t.AddedAt != "" {
		m["addedAt"] = t.AddedAt
	}
	return m
}

// ProjectMap converts a project to its camelCase wire shape.
func ProjectMap(p todoist.Project) map[string]any {
	return map[string]any{
		"id":             p.ID,
		"name":           p.Name,
		"parentId":       optional(p.ParentID),
		"color":          p.Color,
		"isFavorite":     p.IsFavorite,
		"viewStyle":      p.ViewStyle,
		"childOrder":     p.ChildOrder,
		"isShared":       p.IsShared,
		"isInboxProject": p.IsInboxProject,
	}
}

// SectionMap converts a section to its camelCase wire shape.
func SectionMap(s todoist.Section) map[string]any {
	return map[string]any{
		"id":        s.ID,
		"name":      s.Name,
		"projectId": s.ProjectID,
		"order":     s.Order,
	}
}

// CommentMap converts a comment to its camelCase wire shape.
func CommentMap(c todoist.Comment) map[string]any {
	m := map[string]any{
		"id":        c.ID,
		"content":   c.Content,
		"taskId":    nil,
		"projectId": nil,
		"postedAt":  c.PostedAt,
	}
	if container, ok := c.Container(); ok {
		switch container.Kind {
		case todoist.ContainerTask:
			m["taskId"] = container.ID
		case todoist.ContainerProject:
			m["projectId"] = container.ID
		}
	}
	if c.Attachment != nil {
		m["attachment"] = map[string]any{
			"fileName": c.Attachment.FileName,
			"fileUrl":  c.Attachment.FileURL,
			"fileType": c.Attachment.FileType,
		}
	}
	return m
}

// LabelMap converts a label to its camelCase wire shape.
func LabelMap(l todoist.Label) map[string]any {
	return map[string]any{
		"id":         l.ID,
		"name":       l.Name,
		"color":      l.Color,
		"order":      l.Order,
		"isFavorite": l.IsFavorite,
	}
}

// CollaboratorMap converts a collaborator to its camelCase wire shape.
func CollaboratorMap(c todoist.Collaborator) map[string]any {
	return map[string]any{
		"id":    c.ID,
		"name":  c.Name,
		"email": c.Email,
	}
}

func optional(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func labels(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
