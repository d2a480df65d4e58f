package trend

import (
	"fmt"
	"sort"
	"time"

	"hnpulse/app/database"
)

// Result is a derived momentum entry, computed on demand from snapshot rows
// and never persisted. Deltas are latest minus earliest inside the window and
// may be negative (scores and ranks can fall; a negative RankDelta means the
// article climbed the listing).
type Result struct {
	ExternalID   string    `json:"external_id"`
	ScoreDelta   int       `json:"score_delta"`
	CommentDelta int       `json:"comment_delta"`
	RankDelta    int       `json:"rank_delta"`
	LatestScore  int       `json:"latest_score"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
}

// Analyzer ranks articles by score momentum over a bounded time window. It
// only reads snapshot rows; Article and Snapshot state is never mutated.
type Analyzer struct {
	snapshotRepo database.SnapshotRepository
	now          func() time.Time
}

func NewAnalyzer(snapshotRepo database.SnapshotRepository) *Analyzer {
	return &Analyzer{
		snapshotRepo: snapshotRepo,
		now:          time.Now,
	}
}

// Trending returns up to limit articles ordered by score delta inside
// (now - windowHours, now]. Articles with fewer than two snapshots in the
// window carry insufficient data and are excluded, never reported as zero
// delta. Ties break toward the higher latest score.
func (a *Analyzer) Trending(windowHours, limit int) ([]Result, error) {
	if windowHours <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d", windowHours)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	windowEnd := a.now().UTC()
	windowStart := windowEnd.Add(-time.Duration(windowHours) * time.Hour)

	snapshots, err := a.snapshotRepo.GetWindow(windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot window: %w", err)
	}

	results := aggregate(snapshots, windowStart, windowEnd)

	sort.Slice(results, func(i, j int) bool {
		if results[i].ScoreDelta != results[j].ScoreDelta {
			return results[i].ScoreDelta > results[j].ScoreDelta
		}
		if results[i].LatestScore != results[j].LatestScore {
			return results[i].LatestScore > results[j].LatestScore
		}
		return results[i].ExternalID < results[j].ExternalID
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// aggregate folds the ordered window rows into one result per article.
// GetWindow returns rows grouped by external_id with captured_at ascending,
// so earliest and latest are the run's first and last rows.
func aggregate(snapshots []database.Snapshot, windowStart, windowEnd time.Time) []Result {
	var results []Result

	for start := 0; start < len(snapshots); {
		end := start
		for end < len(snapshots) && snapshots[end].ExternalID == snapshots[start].ExternalID {
			end++
		}

		if end-start >= 2 {
			earliest := snapshots[start]
			latest := snapshots[end-1]
			results = append(results, Result{
				ExternalID:   earliest.ExternalID,
				ScoreDelta:   latest.Score - earliest.Score,
				CommentDelta: latest.CommentCount - earliest.CommentCount,
				RankDelta:    latest.Rank - earliest.Rank,
				LatestScore:  latest.Score,
				WindowStart:  windowStart,
				WindowEnd:    windowEnd,
			})
		}

		start = end
	}

	return results
}
