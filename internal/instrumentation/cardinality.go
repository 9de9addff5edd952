package instrumentation

import "strings"

// Cardinality helpers keep label values inside a small, known set so a
// caller-controlled string can never create new time series.

// Entity names used as metric and span labels.
const (
	EntityTask    = "task"
	EntityProject = "project"
	EntitySection = "section"
	EntityComment = "comment"
	EntityLabel   = "label"
)

var knownEntities = []string{EntityTask, EntityProject, EntitySection, EntityComment, EntityLabel}

// BoundedLabel returns value if it is one of allowed, otherwise "other".
//
// Example:
//
//	BoundedLabel("task", "task", "project")   // "task"
//	BoundedLabel("42", "task", "project")     // "other"
//	BoundedLabel("", "task")                  // "unknown"
func BoundedLabel(value string, allowed ...string) string {
	if value == "" {
		return StatusUnknown
	}
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return "other"
}

// NormalizeOperation turns a client operation name into a label value:
// lowercase with spaces and dashes replaced by underscores.
//
//	NormalizeOperation("get task")        // "get_task"
//	NormalizeOperation("Quick-Add Task")  // "quick_add_task"
func NormalizeOperation(op string) string {
	op = strings.ToLower(strings.TrimSpace(op))
	if op == "" {
		return StatusUnknown
	}
	return strings.NewReplacer(" ", "_", "-", "_").Replace(op)
}

// Common operation types for tool metrics.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationClose  = "close"
	OperationReopen = "reopen"
	OperationMove   = "move"
	OperationSearch = "search"
)
