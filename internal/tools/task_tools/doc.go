// Package task_tools provides the MCP tools that read and change Todoist
// tasks.
//
// Every tool that changes an existing task first verifies that the task ID
// still belongs to a task with the content and project name the agent gave.
// A mismatch aborts the call before any write reaches Todoist.
//
// Read tools (always registered):
//   - get-task: one verified task with the default fields
//   - get-tasks: tasks of a verified project, optionally paged and field-filtered
//   - get-tasks-by-filter: tasks matching a Todoist filter query
//
// Write tools (skipped in read-only mode):
//   - add-task, quick-add-task
//   - close-task, reopen-task, delete-task
//   - delete-tasks-bulk: per-item verification with a summary of outcomes
//   - move-tasks: verifies every task and exactly one destination, then moves
package task_tools
