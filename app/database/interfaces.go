package database

import (
	"time"
)

type ArticleRepository interface {
	// Upsert inserts the article or, if external_id is already tracked,
	// refreshes only the mutable metric fields. Returns true when a new row
	// was created.
	Upsert(article Article) (bool, error)

	Exists(externalID string) (bool, error)
	GetArticle(externalID string) (*Article, error)
	GetArticleCount() (int, error)
	GetTopDomains(limit int) ([]DomainCount, error)
}

type SnapshotRepository interface {
	// Record appends one immutable history row keyed by
	// (external_id, captured_at).
	Record(snapshot Snapshot) error

	GetHistory(externalID string) ([]Snapshot, error)
	GetWindow(since time.Time) ([]Snapshot, error)
	GetSnapshotCount() (int, error)
}
