// Package common holds the helpers shared by the MCP tool packages:
// argument parsing, entity presentation and the instrumented handler
// wrapper that traces, meters and audits every tool call.
package common
