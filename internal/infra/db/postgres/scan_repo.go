package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
)

type ScanRepository struct{ db *sql.DB }

func NewScanRepository(db *sql.DB) *ScanRepository { return &ScanRepository{db: db} }

const scanColumns = `id, screenshot_path, image_url, rules_text,
       classification, sensitivity_rating, should_be_deleted, deletion_date, reasoning,
       status, fail_reason, created_at, processed_at`

// Create insert ScanRecord baru
func (r *ScanRepository) Create(ctx context.Context, rec *domain.ScanRecord) error {
	const q = `
INSERT INTO scan_results
(id, screenshot_path, image_url, rules_text,
 classification, sensitivity_rating, should_be_deleted, deletion_date, reasoning,
 status, fail_reason, created_at, processed_at)
VALUES ($1,$2,$3,$4,
        $5,$6,$7,$8,$9,
        $10,$11,$12,$13);`

	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.ScreenshotPath, rec.ImageURL, rec.RulesText,
		nullString(rec.Classification), nullIntPtr(rec.SensitivityRating),
		nullBoolPtr(rec.ShouldBeDeleted), nullTimePtr(rec.DeletionDate), nullString(rec.Reasoning),
		rec.Status, nullString(rec.FailReason), created, nullTimePtr(rec.ProcessedAt),
	)
	return err
}

// Get by ID
func (r *ScanRepository) Get(ctx context.Context, id domain.RecordID) (*domain.ScanRecord, error) {
	const q = `SELECT ` + scanColumns + ` FROM scan_results WHERE id=$1 LIMIT 1;`
	rec, err := scanRow(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	return rec, err
}

// FindPendingByPath locates the single pending record for the correlation key
func (r *ScanRepository) FindPendingByPath(ctx context.Context, path string) (*domain.ScanRecord, error) {
	const q = `SELECT ` + scanColumns + ` FROM scan_results WHERE screenshot_path=$1 AND status=$2 LIMIT 1;`
	rec, err := scanRow(r.db.QueryRowContext(ctx, q, path, domain.StatusPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	return rec, err
}

// Update overwrite semua field mutable by ID
func (r *ScanRepository) Update(ctx context.Context, rec *domain.ScanRecord) error {
	const q = `
UPDATE scan_results SET
 classification=$1, sensitivity_rating=$2, should_be_deleted=$3, deletion_date=$4, reasoning=$5,
 status=$6, fail_reason=$7, processed_at=$8
WHERE id=$9;`
	res, err := r.db.ExecContext(ctx, q,
		nullString(rec.Classification), nullIntPtr(rec.SensitivityRating),
		nullBoolPtr(rec.ShouldBeDeleted), nullTimePtr(rec.DeletionDate), nullString(rec.Reasoning),
		rec.Status, nullString(rec.FailReason), nullTimePtr(rec.ProcessedAt),
		rec.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// Delete by ID
func (r *ScanRepository) Delete(ctx context.Context, id domain.RecordID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scan_results WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// ListAll newest first
func (r *ScanRepository) ListAll(ctx context.Context) ([]*domain.ScanRecord, error) {
	const q = `SELECT ` + scanColumns + ` FROM scan_results ORDER BY created_at DESC;`
	return r.list(ctx, q)
}

// ListDue returns sweep candidates: flagged, dated, and expired
func (r *ScanRepository) ListDue(ctx context.Context, now time.Time) ([]*domain.ScanRecord, error) {
	const q = `SELECT ` + scanColumns + ` FROM scan_results
WHERE should_be_deleted=TRUE AND deletion_date IS NOT NULL AND deletion_date <= $1;`
	return r.list(ctx, q, now)
}

// ListScheduled returns pending deletions by ascending deletion date
func (r *ScanRepository) ListScheduled(ctx context.Context) ([]*domain.ScanRecord, error) {
	const q = `SELECT ` + scanColumns + ` FROM scan_results
WHERE should_be_deleted=TRUE AND deletion_date IS NOT NULL
ORDER BY deletion_date ASC;`
	return r.list(ctx, q)
}

func (r *ScanRepository) list(ctx context.Context, q string, args ...any) ([]*domain.ScanRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ScanRecord
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
