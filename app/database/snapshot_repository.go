package database

import (
	"fmt"
	"time"
)

// SnapshotRepo handles database operations for the append-only history table.
type SnapshotRepo struct {
	db *DB
}

var _ SnapshotRepository = (*SnapshotRepo)(nil)

// NewSnapshotRepo creates a new snapshot repository
func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Record appends one history row. A second row for the same
// (external_id, captured_at) pair violates the composite primary key and
// surfaces as ErrDuplicate.
func (r *SnapshotRepo) Record(snapshot Snapshot) error {
	_, err := r.db.writeDB.Exec(`
		INSERT INTO article_snapshots (external_id, captured_at, score, comment_count, rank)
		VALUES (?, ?, ?, ?, ?)
	`, snapshot.ExternalID, snapshot.CapturedAt.UTC(), snapshot.Score,
		snapshot.CommentCount, snapshot.Rank)
	if err != nil {
		return classify(err)
	}
	return nil
}

// GetHistory returns all snapshots for an article, oldest first.
func (r *SnapshotRepo) GetHistory(externalID string) ([]Snapshot, error) {
	rows, err := r.db.readDB.Query(`
		SELECT external_id, captured_at, score, comment_count, rank
		FROM article_snapshots
		WHERE external_id = ?
		ORDER BY captured_at ASC
	`, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", classify(err))
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ExternalID, &s.CapturedAt, &s.Score, &s.CommentCount, &s.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snapshots, nil
}

// GetWindow returns every snapshot captured after since, grouped by article
// (ordered by external_id, then captured_at ascending).
func (r *SnapshotRepo) GetWindow(since time.Time) ([]Snapshot, error) {
	rows, err := r.db.readDB.Query(`
		SELECT external_id, captured_at, score, comment_count, rank
		FROM article_snapshots
		WHERE captured_at > ?
		ORDER BY external_id ASC, captured_at ASC
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot window: %w", classify(err))
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ExternalID, &s.CapturedAt, &s.Score, &s.CommentCount, &s.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snapshots, nil
}

// GetSnapshotCount returns the total number of history rows
func (r *SnapshotRepo) GetSnapshotCount() (int, error) {
	var count int
	err := r.db.readDB.QueryRow(`SELECT COUNT(*) FROM article_snapshots`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot count: %w", classify(err))
	}
	return count, nil
}
