// Package section_tools provides the MCP tools for sections, the named
// groups of tasks inside a project.
package section_tools
