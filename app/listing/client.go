package listing

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultMaxAttempts = 3
	maxBackoff         = 30 * time.Second
)

// Client walks the pages of a listing source with a politeness delay between
// requests and bounded per-page retries. Exhausted pages are skipped; fetch
// failures are never fatal to the whole run.
type Client struct {
	pacer       Pacer
	maxAttempts int
	baseBackoff time.Duration
}

func NewClient(pacer Pacer) *Client {
	return &Client{
		pacer:       pacer,
		maxAttempts: defaultMaxAttempts,
		baseBackoff: time.Second,
	}
}

// FetchPages retrieves up to pageBudget pages from the source in order and
// returns the concatenated items plus the number of pages that were skipped
// after retry exhaustion. A cancelled context stops the walk and returns the
// items collected so far alongside the context error.
func (c *Client) FetchPages(ctx context.Context, source Source, pageBudget int) ([]RawItem, int, error) {
	var items []RawItem
	skippedPages := 0

	for page := 1; page <= pageBudget; page++ {
		if err := ctx.Err(); err != nil {
			return items, skippedPages, err
		}

		if page > 1 {
			c.pacer.Wait(ctx)
		}

		pageItems, err := c.fetchPageWithRetry(ctx, source, page)
		if err != nil {
			if ctx.Err() != nil {
				return items, skippedPages, ctx.Err()
			}
			slog.Warn("Page skipped after retries",
				"source", source.Name(), "page", page, "attempts", c.maxAttempts, "error", err)
			skippedPages++
			continue
		}

		items = append(items, pageItems...)
	}

	return items, skippedPages, nil
}

func (c *Client) fetchPageWithRetry(ctx context.Context, source Source, page int) ([]RawItem, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		items, err := source.FetchPage(ctx, page)
		if err == nil {
			return items, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == c.maxAttempts {
			break
		}

		backoff := c.baseBackoff << uint(attempt-1)
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		slog.Debug("Transient fetch failure, retrying",
			"source", source.Name(), "page", page, "attempt", attempt, "delay", backoff.String(), "error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}
