// Package logging provides structured logging utilities for todoistguard.
//
// It centralizes attribute naming on top of the standard library's slog so
// tool handlers, the Todoist client and the verifier log the same keys.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "delete-task")
//	logger.Info("task deleted",
//	    logging.Status(logging.StatusSuccess))
//
// Keep secrets and user text bounded:
//
//	logger.Debug("client configured", "token", logging.SanitizeToken(token))
//	logger.Debug("comment verified", "content", logging.Truncate(content, 50))
//
// # Security Considerations
//
//   - API tokens are never logged directly
//   - Entity IDs are logged, entity names only at debug level
package logging
