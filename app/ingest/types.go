package ingest

import (
	"context"
	"time"

	"hnpulse/app/database"
	"hnpulse/app/listing"
)

// Fetcher walks a listing source within a page budget. The int result is the
// number of pages skipped after retry exhaustion.
type Fetcher interface {
	Run(ctx context.Context, pageBudget int) ([]listing.RawItem, int, error)
}

// Extractor normalizes one raw item into an Article.
type Extractor interface {
	Run(ctx context.Context, item listing.RawItem) (database.Article, error)
}

// CycleSummary reports the outcome of one poll cycle. Every item ends up in
// exactly one counter; nothing fails silently.
type CycleSummary struct {
	CycleID   string
	Source    string
	Created   int // articles observed for the first time
	Updated   int // tracked articles with refreshed metrics
	Skipped   int // intra-cycle duplicates, thin content, skip-policy hits
	Errors    int // skipped pages, extraction failures, integrity violations
	StartedAt time.Time
	Duration  time.Duration
}
