// Package cmd implements the command-line interface for todoistguard.
//
// This package provides the following commands:
//   - serve: Start the MCP server (default when no subcommand is given)
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
package cmd
