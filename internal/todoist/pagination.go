package todoist

import (
	"context"
	"fmt"
)

// DefaultMaxPages bounds FetchAll when the caller does not pick a limit.
const DefaultMaxPages = 100

// Page is one cursor-linked page of a list endpoint.
type Page[T any] struct {
	Results    []T    `json:"results"`
	NextCursor string `json:"next_cursor"`
}

// PageFunc fetches the page starting at cursor. The first page has an empty cursor.
type PageFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// FetchAll follows next cursors until the last page and returns every result
// in server order.
func FetchAll[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	return FetchAllLimit(ctx, DefaultMaxPages, fetch)
}

// FetchAllLimit is FetchAll with an explicit page cap.
func FetchAllLimit[T any](ctx context.Context, maxPages int, fetch PageFunc[T]) ([]T, error) {
	var (
		all    []T
		cursor string
		seen   = make(map[string]struct{})
	)

	for page := 0; page < maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Results...)

		if p.NextCursor == "" {
			if all == nil {
				all = []T{}
			}
			return all, nil
		}
		if _, dup := seen[p.NextCursor]; dup {
			return nil, fmt.Errorf("pagination cursor %q repeated after %d pages", p.NextCursor, page+1)
		}
		seen[p.NextCursor] = struct{}{}
		cursor = p.NextCursor
	}

	return nil, fmt.Errorf("pagination exceeded %d pages", maxPages)
}
