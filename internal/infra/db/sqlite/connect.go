package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scan_results (
  id TEXT PRIMARY KEY,
  screenshot_path TEXT NOT NULL,
  image_url TEXT NOT NULL,
  rules_text TEXT NOT NULL,
  classification TEXT,
  sensitivity_rating INTEGER,
  should_be_deleted INTEGER,
  deletion_date TIMESTAMP,
  reasoning TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  fail_reason TEXT,
  created_at TIMESTAMP NOT NULL,
  processed_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_scan_results_pending_path ON scan_results (screenshot_path, status);
CREATE INDEX IF NOT EXISTS idx_scan_results_deletion ON scan_results (should_be_deleted, deletion_date);
`

func Connect(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// single writer; the sqlite file does not like concurrent write conns
	db.SetMaxOpenConns(1)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx2, schema); err != nil {
		return nil, err
	}
	return db, nil
}
