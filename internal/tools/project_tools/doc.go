// Package project_tools provides the MCP tools for Todoist projects.
//
// Reads and writes on an existing project name it twice, by ID and by its
// current name, and the name is checked before anything else happens.
package project_tools
