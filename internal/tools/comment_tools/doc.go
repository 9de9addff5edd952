// Package comment_tools provides the MCP tools for comments on tasks and
// projects.
//
// An existing comment is identified by its ID plus the first 50 characters
// of its content. Its container is checked too: a task comment needs both
// the task name and the project name, a project comment only the project
// name.
package comment_tools
