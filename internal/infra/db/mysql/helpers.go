package mysql

import (
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
)

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
