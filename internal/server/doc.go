// Package server provides the MCP server context and the HTTP side of the
// todoistguard server.
//
// # Key Components
//
// ServerContext owns the Todoist client together with the identity verifier
// and the move destination resolver built on top of it. Tool handlers receive
// it and never construct clients themselves. Instrumentation (metrics and
// audit logging) is attached after construction.
//
// HTTPServer serves the MCP server over streamable HTTP at /mcp and mounts
// the Kubernetes health endpoints:
//   - /healthz: liveness
//   - /readyz: readiness, failing once shutdown starts
//   - /healthz/detailed: status and uptime
//
// MetricsServer exposes Prometheus metrics on a dedicated port so operational
// data stays off the MCP listener.
package server
