// Package resources provides MCP resources: read-only data that clients can
// fetch without calling a tool.
//
// todoist://projects lists the ID and name of every project, the pairs the
// verified tools expect. todoist://reference/priorities lists the priority
// categories the tools accept and return.
package resources
