package jira

import (
	"context"
)

// CursorPage is one page of a token-paginated endpoint.
type CursorPage[T any] struct {
	Items []T

	// NextToken continues the listing; empty means this was the last page.
	NextToken string
}

// CursorFetcher requests the page identified by token ("" for the first page).
type CursorFetcher[T any] func(ctx context.Context, token string) (CursorPage[T], error)

// PaginateCursor drives fetch until a page comes back without a
// continuation token. Pages are requested strictly one after another.
//
// On an *AuthError the accumulated items are discarded and nil is
// returned with the error; on any other error the items gathered so far
// are returned with it.
func PaginateCursor[T any](ctx context.Context, fetch CursorFetcher[T]) ([]T, error) {
	var all []T
	token := ""
	for {
		page, err := fetch(ctx, token)
		if err != nil {
			if IsAuth(err) {
				return nil, err
			}
			return all, err
		}

		all = append(all, page.Items...)
		if page.NextToken == "" {
			return all, nil
		}
		token = page.NextToken
	}
}

// OffsetPage is one page of a startAt/maxResults endpoint.
type OffsetPage[T any] struct {
	Items []T

	// Total is the server-declared result count, if any.
	Total *int

	// PageSize is the server-declared page size, if any. When set the next
	// offset advances by it instead of by len(Items).
	PageSize *int

	// Last is the server's isLast flag, if any. When present it decides
	// continuation on its own.
	Last *bool
}

// OffsetFetcher requests the page starting at startAt.
type OffsetFetcher[T any] func(ctx context.Context, startAt int) (OffsetPage[T], error)

// PaginateOffset drives fetch from offset 0. After each page the next
// offset is offset+len(Items) (or offset+PageSize) and the total is the
// declared Total, or offset+len(Items) when none is declared. Paging stops
// on an empty page, once the next offset reaches the total, or when the
// page declares itself last. Error handling matches PaginateCursor.
func PaginateOffset[T any](ctx context.Context, fetch OffsetFetcher[T]) ([]T, error) {
	var all []T
	offset := 0
	for {
		page, err := fetch(ctx, offset)
		if err != nil {
			if IsAuth(err) {
				return nil, err
			}
			return all, err
		}

		n := len(page.Items)
		all = append(all, page.Items...)
		if n == 0 {
			return all, nil
		}

		next := offset + n
		if page.PageSize != nil && *page.PageSize > 0 {
			next = offset + *page.PageSize
		}

		if page.Last != nil {
			if *page.Last {
				return all, nil
			}
			offset = next
			continue
		}

		total := offset + n
		if page.Total != nil {
			total = *page.Total
		}
		if next >= total {
			return all, nil
		}
		offset = next
	}
}
