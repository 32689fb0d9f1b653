package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
)

type ScanRepository struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

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
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?);
`
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
	const q = `SELECT ` + scanColumns + ` FROM scan_results WHERE id=? LIMIT 1;`
	rec, err := scanRow(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	return rec, err
}

// FindPendingByPath locates the single pending record for the correlation key
func (r *ScanRepository) FindPendingByPath(ctx context.Context, path string) (*domain.ScanRecord, error) {
	const q = `SELECT ` + scanColumns + ` FROM scan_results WHERE screenshot_path=? AND status=? LIMIT 1;`
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
 classification=?, sensitivity_rating=?, should_be_deleted=?, deletion_date=?, reasoning=?,
 status=?, fail_reason=?, processed_at=?
WHERE id=?;
`
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM scan_results WHERE id=?;`, id)
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
WHERE should_be_deleted=1 AND deletion_date IS NOT NULL AND deletion_date <= ?;`
	return r.list(ctx, q, now)
}

// ListScheduled returns pending deletions by ascending deletion date
func (r *ScanRepository) ListScheduled(ctx context.Context) ([]*domain.ScanRecord, error) {
	const q = `SELECT ` + scanColumns + ` FROM scan_results
WHERE should_be_deleted=1 AND deletion_date IS NOT NULL
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*domain.ScanRecord, error) {
	var rec domain.ScanRecord
	var cls, reasoning, failReason sql.NullString
	var rating sql.NullInt64
	var del sql.NullBool
	var deletionDate, processedAt sql.NullTime
	if err := row.Scan(
		&rec.ID, &rec.ScreenshotPath, &rec.ImageURL, &rec.RulesText,
		&cls, &rating, &del, &deletionDate, &reasoning,
		&rec.Status, &failReason, &rec.CreatedAt, &processedAt,
	); err != nil {
		return nil, err
	}
	rec.Classification = cls.String
	rec.Reasoning = reasoning.String
	rec.FailReason = failReason.String
	if rating.Valid {
		v := int(rating.Int64)
		rec.SensitivityRating = &v
	}
	if del.Valid {
		v := del.Bool
		rec.ShouldBeDeleted = &v
	}
	if deletionDate.Valid {
		t := deletionDate.Time
		rec.DeletionDate = &t
	}
	if processedAt.Valid {
		t := processedAt.Time
		rec.ProcessedAt = &t
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullIntPtr(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullBoolPtr(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
