package database

import (
	"database/sql"
	"fmt"
)

// ArticleRepo handles database operations for the articles current-state table.
type ArticleRepo struct {
	db *DB
}

var _ ArticleRepository = (*ArticleRepo)(nil)

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// Upsert inserts a new article or refreshes the mutable metrics of an
// existing one. Identity fields and first_seen stay untouched on conflict.
// The check-then-act pair runs inside a transaction on the single write
// connection, so it cannot interleave with another upsert for the same key;
// the primary key constraint remains as a backstop.
// The UPDATE only applies when the caller's timestamp is not older than the
// stored last_updated, so a slow cycle that commits after a fresher one
// cannot regress the row. Stale writes are silently dropped.
func (r *ArticleRepo) Upsert(article Article) (bool, error) {
	tx, err := r.db.writeDB.Begin()
	if err != nil {
		return false, classify(err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM articles WHERE external_id = ?)`,
		article.ExternalID).Scan(&exists)
	if err != nil {
		return false, classify(err)
	}

	if exists {
		_, err = tx.Exec(`
			UPDATE articles
			SET score = ?, comment_count = ?, rank = ?, content_length = ?,
			    last_updated = ?
			WHERE external_id = ? AND last_updated <= ?
		`, article.Score, article.CommentCount, article.Rank, article.ContentLength,
			article.LastUpdated.UTC(), article.ExternalID, article.LastUpdated.UTC())
	} else {
		_, err = tx.Exec(`
			INSERT INTO articles (
				external_id, title, canonical_url, domain, author,
				first_seen, last_updated, score, comment_count, rank,
				content_length
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, article.ExternalID, article.Title, article.CanonicalURL, article.Domain,
			article.Author, article.FirstSeen.UTC(), article.LastUpdated.UTC(),
			article.Score, article.CommentCount, article.Rank, article.ContentLength)
	}
	if err != nil {
		return false, classify(err)
	}

	if err := tx.Commit(); err != nil {
		return false, classify(err)
	}

	return !exists, nil
}

// Exists reports whether an article with the given external ID is tracked.
func (r *ArticleRepo) Exists(externalID string) (bool, error) {
	var exists bool
	err := r.db.readDB.QueryRow(`SELECT EXISTS(SELECT 1 FROM articles WHERE external_id = ?)`,
		externalID).Scan(&exists)
	if err != nil {
		return false, classify(err)
	}
	return exists, nil
}

// GetArticle returns the current state for an external ID, or nil when the
// article is not tracked.
func (r *ArticleRepo) GetArticle(externalID string) (*Article, error) {
	var a Article
	err := r.db.readDB.QueryRow(`
		SELECT external_id, title, canonical_url, domain, author,
		       first_seen, last_updated, score, comment_count, rank,
		       content_length
		FROM articles
		WHERE external_id = ?
	`, externalID).Scan(
		&a.ExternalID, &a.Title, &a.CanonicalURL, &a.Domain, &a.Author,
		&a.FirstSeen, &a.LastUpdated, &a.Score, &a.CommentCount, &a.Rank,
		&a.ContentLength,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", classify(err))
	}
	return &a, nil
}

// GetArticleCount returns the total number of tracked articles
func (r *ArticleRepo) GetArticleCount() (int, error) {
	var count int
	err := r.db.readDB.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", classify(err))
	}
	return count, nil
}

// GetTopDomains returns the most frequent registrable domains
func (r *ArticleRepo) GetTopDomains(limit int) ([]DomainCount, error) {
	rows, err := r.db.readDB.Query(`
		SELECT domain, COUNT(*) as cnt
		FROM articles
		GROUP BY domain
		ORDER BY cnt DESC, domain ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top domains: %w", classify(err))
	}
	defer rows.Close()

	var counts []DomainCount
	for rows.Next() {
		var dc DomainCount
		if err := rows.Scan(&dc.Domain, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan domain row: %w", err)
		}
		counts = append(counts, dc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating domain rows: %w", err)
	}

	return counts, nil
}
