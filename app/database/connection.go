package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a pair of SQLite handles: a dedicated single-connection write
// handle and a read-only handle. Funneling every write through one connection
// serializes upserts per key at the storage layer.
type DB struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// NewConnection opens the SQLite database at dbPath, creating the parent
// directory if necessary.
func NewConnection(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	writeDB, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open write handle: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	if err := writeDB.Ping(); err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	readDB, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("failed to open read handle: %w", err)
	}

	return &DB{readDB: readDB, writeDB: writeDB}, nil
}

// Close closes both database handles.
func (db *DB) Close() error {
	var firstErr error
	if db.readDB != nil {
		if err := db.readDB.Close(); err != nil {
			firstErr = err
		}
	}
	if db.writeDB != nil {
		if err := db.writeDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
