package listing

import (
	"context"
	"fmt"
)

// RawItem is one entry of a ranked upstream listing, before normalization.
type RawItem struct {
	ExternalID   string
	Rank         int
	Title        string
	URL          string
	Score        int
	CommentCount int
	Author       string
	CommentsURL  string
}

// Source yields the raw items of a single listing page. Implementations must
// not have side effects beyond the network fetch.
type Source interface {
	Name() string
	FetchPage(ctx context.Context, page int) ([]RawItem, error)
}

// FetchError is a transient per-page failure. The client retries it with
// bounded backoff and skips the page once attempts are exhausted.
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
