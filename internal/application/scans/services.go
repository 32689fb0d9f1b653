package scans

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/bryanwahyu/screenguard/internal/application"
	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
)

// Service implements use-cases untuk ScanRecord.
// Service is designed to be used concurrently and is thread-safe as long as
// the Repository is; the unique-pending-path invariant is guarded by the
// orchestrator's per-path lock around OpenScan.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

// OpenScan inserts a new pending record for a detected screenshot.
// A second call for the same path while the first record is still pending is
// rejected, never allowed to create two pending rows for one path.
func (s *Service) OpenScan(ctx context.Context, path, imageURL, rulesText string) (domain.RecordID, error) {
	existing, err := s.Repo.FindPendingByPath(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return "", err
	}
	if existing != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrDuplicatePending, path)
	}

	rec := &domain.ScanRecord{
		ID:             domain.RecordID(uuid.New().String()),
		ScreenshotPath: path,
		ImageURL:       imageURL,
		RulesText:      rulesText,
		Status:         domain.StatusPending,
		CreatedAt:      s.Clock.Now(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// MergeResult locates the single pending record for the path and writes the
// verdict into it. Returns ErrRecordNotFound if the record never existed or
// was already deleted; callers log and move on.
func (s *Service) MergeResult(ctx context.Context, path string, v *domain.Verdict) error {
	rec, err := s.Repo.FindPendingByPath(ctx, path)
	if err != nil {
		return err
	}
	rec.ApplyVerdict(v, s.Clock.Now())
	return s.Repo.Update(ctx, rec)
}

// MarkFailed transitions the pending record for the path to the failed state
// with a reason code, so a scan that will never complete is distinguishable
// from one still running.
func (s *Service) MarkFailed(ctx context.Context, path, reason string) error {
	rec, err := s.Repo.FindPendingByPath(ctx, path)
	if err != nil {
		return err
	}
	rec.Status = domain.StatusFailed
	rec.FailReason = reason
	return s.Repo.Update(ctx, rec)
}

// List returns all records, newest first.
func (s *Service) List(ctx context.Context) ([]*domain.ScanRecord, error) {
	return s.Repo.ListAll(ctx)
}

// Get ambil 1 record by id
func (s *Service) Get(ctx context.Context, id domain.RecordID) (*domain.ScanRecord, error) {
	return s.Repo.Get(ctx, id)
}

// Delete removes the record and its on-disk file. A record that is already
// gone, or a file that is already missing, is a benign outcome: the user
// delete and the retention sweep may race on the same record.
func (s *Service) Delete(ctx context.Context, id domain.RecordID) error {
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := os.Remove(rec.ScreenshotPath); err != nil && !os.IsNotExist(err) {
		log.Printf("delete: failed to remove file path=%s err=%v", rec.ScreenshotPath, err)
	}

	if err := s.Repo.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}
	return nil
}
