package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const schema = `
CREATE TABLE IF NOT EXISTS scan_results (
  id VARCHAR(64) PRIMARY KEY,
  screenshot_path TEXT NOT NULL,
  image_url TEXT NOT NULL,
  rules_text MEDIUMTEXT NOT NULL,
  classification VARCHAR(64),
  sensitivity_rating INT,
  should_be_deleted TINYINT(1),
  deletion_date DATETIME,
  reasoning TEXT,
  status VARCHAR(16) NOT NULL DEFAULT 'pending',
  fail_reason VARCHAR(64),
  created_at DATETIME NOT NULL,
  processed_at DATETIME,
  INDEX idx_scan_results_pending_path (screenshot_path(255), status),
  INDEX idx_scan_results_deletion (should_be_deleted, deletion_date)
);`

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
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
