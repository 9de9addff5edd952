// Package verify checks caller-supplied names against current Todoist state
// before a mutation runs.
//
// An agent refers to entities by opaque IDs. Before any state-changing tool
// acts, it passes the ID together with the names it believes belong to it:
//
//	res, err := v.Task(ctx, "6X7rM8997g3RQmvh", "Buy milk", "Home")
//	if err != nil {
//	    return err // *MismatchError, *ParameterError or a todoist error
//	}
//	client.DeleteTask(ctx, res.Task.ID)
//
// Every check fetches fresh state. Names are compared exactly: no trimming,
// no case folding. Task and section checks also compare the name of the
// containing project, and comment checks follow the comment to its task or
// project.
//
// Errors from the fetcher are returned unchanged, so errors.Is(err,
// todoist.ErrNotFound) keeps working. KindOf maps any error to a short label
// for metrics and logs.
package verify
