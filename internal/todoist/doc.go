// Package todoist provides a client for the Todoist REST API.
//
// The client covers the entities the MCP tools need:
//   - Tasks (get, list, filter, add, quick add, close, reopen, delete, move)
//   - Projects (get, list, add, update, delete, collaborators)
//   - Sections (get, list, add, rename, delete)
//   - Comments on tasks or projects (get, list, add, update, delete)
//   - Labels (get, update, delete)
//
// # Authentication
//
// Requests carry the user's personal API token as a bearer token through an
// oauth2.StaticTokenSource.
//
// # Resilience
//
// Each call goes through a token bucket rate limiter and a fortify timeout.
// Inside it, a fortify retry repeats transport failures, 429 and 5xx answers
// with exponential backoff. Mutations carry an X-Request-Id that stays the
// same across attempts, so Todoist can drop duplicates.
//
// # Pagination
//
// List endpoints return one Page. FetchAll follows next cursors:
//
//	projects, err := todoist.FetchAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Project], error) {
//	    return client.ListProjects(ctx, cursor)
//	})
//
// # Errors
//
// Non-2xx answers become *APIError. errors.Is(err, ErrNotFound) matches 404s.
package todoist
