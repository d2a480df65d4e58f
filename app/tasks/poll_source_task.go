package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"hnpulse/app/config"
	"hnpulse/app/database"
	"hnpulse/app/extract"
	"hnpulse/app/ingest"
	"hnpulse/app/listing"
)

type PollSourceTask struct {
	Task
	Source       *config.Source
	httpClient   *http.Client
	articleRepo  database.ArticleRepository
	snapshotRepo database.SnapshotRepository
	userAgent    string
	workerCount  int
}

func NewPollSourceTask(sourceName string, source *config.Source, httpClient *http.Client, articleRepo database.ArticleRepository, snapshotRepo database.SnapshotRepository, userAgent string, workerCount int) *PollSourceTask {
	return &PollSourceTask{
		Task:         NewTask(TaskTypePollSource, sourceName),
		Source:       source,
		httpClient:   httpClient,
		articleRepo:  articleRepo,
		snapshotRepo: snapshotRepo,
		userAgent:    userAgent,
		workerCount:  workerCount,
	}
}

// sourceFetcher binds a paginated client to one configured source.
type sourceFetcher struct {
	client *listing.Client
	source listing.Source
}

func (f sourceFetcher) Run(ctx context.Context, pageBudget int) ([]listing.RawItem, int, error) {
	return f.client.FetchPages(ctx, f.source, pageBudget)
}

func (t *PollSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Source.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	fetcher, err := t.buildFetcher()
	if err != nil {
		return fmt.Errorf("failed to build fetcher: %w", err)
	}

	extractor := extract.NewExtractor(t.httpClient, t.userAgent, t.Source.Settings.GetTimeout(), t.Source.Settings.MinContentLength)
	ingestor := ingest.NewIngestor(fetcher, extractor, t.articleRepo, t.snapshotRepo, t.Source.Name, t.Source.Settings.UpsertPolicy, t.workerCount)

	summary, err := ingestor.RunCycle(ctx, t.Source.Settings.Pages)
	if err != nil {
		return fmt.Errorf("failed to run poll cycle: %w", err)
	}

	slog.Info("Task completed",
		"type", "PollSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"errors", summary.Errors)

	return nil
}

func (t *PollSourceTask) buildFetcher() (ingest.Fetcher, error) {
	var source listing.Source

	switch t.Source.Kind {
	case config.KindFeed:
		source = listing.NewFeedSource(t.Source.Name, t.Source.URL, t.httpClient, t.userAgent, t.Source.Settings.GetTimeout())
	case config.KindSite:
		siteSource, err := listing.NewSiteSource(t.Source.Name, t.Source.URL, t.httpClient, t.userAgent, t.Source.Settings.GetTimeout())
		if err != nil {
			return nil, err
		}
		source = siteSource
	default:
		return nil, fmt.Errorf("unknown source kind: %s", t.Source.Kind)
	}

	client := listing.NewClient(listing.SleepPacer{Interval: t.Source.Settings.GetPolitenessDelay()})

	return sourceFetcher{client: client, source: source}, nil
}
