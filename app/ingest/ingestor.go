package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"hnpulse/app/config"
	"hnpulse/app/database"
	"hnpulse/app/extract"
	"hnpulse/app/listing"
)

const snapshotAttempts = 3

// Ingestor runs one poll cycle: fetch the listing, deduplicate in memory,
// normalize items on a bounded worker pool, then upsert current state and
// append a history snapshot per item. All store writes happen on the calling
// goroutine; the workers only fetch and extract.
type Ingestor struct {
	fetcher      Fetcher
	extractor    Extractor
	articleRepo  database.ArticleRepository
	snapshotRepo database.SnapshotRepository
	sourceName   string
	upsertPolicy string
	workerCount  int
	now          func() time.Time
}

func NewIngestor(fetcher Fetcher, extractor Extractor, articleRepo database.ArticleRepository,
	snapshotRepo database.SnapshotRepository, sourceName, upsertPolicy string, workerCount int) *Ingestor {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Ingestor{
		fetcher:      fetcher,
		extractor:    extractor,
		articleRepo:  articleRepo,
		snapshotRepo: snapshotRepo,
		sourceName:   sourceName,
		upsertPolicy: upsertPolicy,
		workerCount:  workerCount,
		now:          time.Now,
	}
}

type extractResult struct {
	raw     listing.RawItem
	article database.Article
	err     error
}

// RunCycle polls the source once. Fetch and extraction failures are counted
// and never abort the batch; a storage-unavailable error aborts the remaining
// cycle while keeping all work already committed.
func (i *Ingestor) RunCycle(ctx context.Context, pageBudget int) (summary CycleSummary, err error) {
	summary = CycleSummary{
		CycleID:   uuid.NewString(),
		Source:    i.sourceName,
		StartedAt: i.now().UTC(),
	}
	defer func() {
		summary.Duration = i.now().UTC().Sub(summary.StartedAt)
	}()

	items, skippedPages, err := i.fetcher.Run(ctx, pageBudget)
	summary.Errors += skippedPages
	if err != nil {
		return summary, fmt.Errorf("cycle %s cancelled during fetch: %w", summary.CycleID, err)
	}

	items, duplicates := dedupeItems(items)
	summary.Skipped += duplicates

	capturedAt := i.now().UTC()

	pending, err := i.applySkipPolicy(items, &summary)
	if err != nil {
		return summary, err
	}

	results := i.extractAll(ctx, pending)

	for result := range results {
		if err := i.persistItem(result, capturedAt, &summary); err != nil {
			// Store gone: drain the workers and surface the cycle failure.
			for range results {
			}
			return summary, err
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("cycle %s cancelled: %w", summary.CycleID, err)
	}

	i.logSummary(summary)
	return summary, nil
}

// dedupeItems drops repeats of the same external ID within one cycle, e.g.
// from overlapping listing pages. First occurrence wins.
func dedupeItems(items []listing.RawItem) ([]listing.RawItem, int) {
	seen := make(map[string]struct{}, len(items))
	deduped := items[:0]
	duplicates := 0

	for _, item := range items {
		if _, ok := seen[item.ExternalID]; ok {
			duplicates++
			continue
		}
		seen[item.ExternalID] = struct{}{}
		deduped = append(deduped, item)
	}

	return deduped, duplicates
}

// applySkipPolicy filters out already-tracked articles under the skip-if-seen
// policy. Under the always-update policy everything passes through.
func (i *Ingestor) applySkipPolicy(items []listing.RawItem, summary *CycleSummary) ([]listing.RawItem, error) {
	if i.upsertPolicy != config.PolicySkip {
		return items, nil
	}

	pending := items[:0]
	for _, item := range items {
		exists, err := i.articleRepo.Exists(item.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("cycle %s aborted: %w", summary.CycleID, err)
		}
		if exists {
			summary.Skipped++
			continue
		}
		pending = append(pending, item)
	}

	return pending, nil
}

// extractAll fans items out to the worker pool and returns the result channel.
func (i *Ingestor) extractAll(ctx context.Context, items []listing.RawItem) <-chan extractResult {
	jobs := make(chan listing.RawItem)
	results := make(chan extractResult)

	var wg sync.WaitGroup
	for w := 0; w < i.workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				article, err := i.extractor.Run(ctx, item)
				results <- extractResult{raw: item, article: article, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, item := range items {
			select {
			case jobs <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// persistItem writes the upsert and snapshot for one extracted item. Only a
// storage-unavailable error is returned; everything else is counted.
func (i *Ingestor) persistItem(result extractResult, capturedAt time.Time, summary *CycleSummary) error {
	if result.err != nil {
		if errors.Is(result.err, extract.ErrContentTooShort) {
			summary.Skipped++
		} else {
			slog.Warn("Item extraction failed",
				"cycle_id", summary.CycleID, "external_id", result.raw.ExternalID, "error", result.err)
			summary.Errors++
		}
		return nil
	}

	article := result.article
	article.FirstSeen = capturedAt
	article.LastUpdated = capturedAt

	created, err := i.articleRepo.Upsert(article)
	switch {
	case err == nil:
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	case errors.Is(err, database.ErrDuplicate):
		// Fatal for this record only. The raw metrics are still known, so the
		// snapshot below is recorded regardless.
		slog.Error("Integrity violation on upsert",
			"cycle_id", summary.CycleID, "external_id", article.ExternalID, "error", err)
		summary.Errors++
	default:
		return fmt.Errorf("cycle %s aborted: %w", summary.CycleID, err)
	}

	i.recordSnapshot(database.Snapshot{
		ExternalID:   article.ExternalID,
		CapturedAt:   capturedAt,
		Score:        result.raw.Score,
		CommentCount: result.raw.CommentCount,
		Rank:         result.raw.Rank,
	}, summary)

	return nil
}

// recordSnapshot appends the history row with bounded retries. A failed
// snapshot never rolls back the committed upsert.
func (i *Ingestor) recordSnapshot(snapshot database.Snapshot, summary *CycleSummary) {
	var err error
	for attempt := 1; attempt <= snapshotAttempts; attempt++ {
		err = i.snapshotRepo.Record(snapshot)
		if err == nil {
			return
		}
		if errors.Is(err, database.ErrDuplicate) {
			// The (external_id, captured_at) row already exists; retrying
			// cannot succeed.
			break
		}
	}

	slog.Error("Snapshot write failed",
		"cycle_id", summary.CycleID, "external_id", snapshot.ExternalID,
		"attempts", snapshotAttempts, "error", err)
	summary.Errors++
}

func (i *Ingestor) logSummary(summary CycleSummary) {
	slog.Info("Cycle completed",
		"cycle_id", summary.CycleID,
		"source", summary.Source,
		"duration", summary.Duration.String(),
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"errors", summary.Errors)
}
