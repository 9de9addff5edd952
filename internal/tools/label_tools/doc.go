// Package label_tools provides the MCP tools for personal labels.
package label_tools
