package database

import (
	"time"
)

// Article is the current-state record for one tracked item. Identity fields
// (Title, CanonicalURL, Domain, Author) and FirstSeen are written once on
// creation and never overwritten by later upserts.
type Article struct {
	ExternalID    string
	Title         string
	CanonicalURL  string
	Domain        string
	Author        string
	FirstSeen     time.Time
	LastUpdated   time.Time
	Score         int
	CommentCount  int
	Rank          int
	ContentLength int
}

// Snapshot is one append-only history row: the article's mutable metrics as
// observed at CapturedAt. Snapshots are never updated or deleted.
type Snapshot struct {
	ExternalID   string
	CapturedAt   time.Time
	Score        int
	CommentCount int
	Rank         int
}

// DomainCount is a per-domain article tally for the stats endpoint.
type DomainCount struct {
	Domain string
	Count  int
}
