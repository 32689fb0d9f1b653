package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS scan_results (
  id TEXT PRIMARY KEY,
  screenshot_path TEXT NOT NULL,
  image_url TEXT NOT NULL,
  rules_text TEXT NOT NULL,
  classification TEXT,
  sensitivity_rating INT,
  should_be_deleted BOOLEAN,
  deletion_date TIMESTAMPTZ,
  reasoning TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  fail_reason TEXT,
  created_at TIMESTAMPTZ NOT NULL,
  processed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_scan_results_pending_path ON scan_results (screenshot_path, status);
CREATE INDEX IF NOT EXISTS idx_scan_results_deletion ON scan_results (should_be_deleted, deletion_date);
`

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
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
