package retention

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/bryanwahyu/screenguard/internal/application"
	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
)

// Scheduler runs the periodic retention sweep: records flagged for deletion
// whose deletion date has passed lose their on-disk file and their row.
// The sweep is idempotent; running it twice on the same state is a no-op the
// second time.
type Scheduler struct {
	Repo     domain.Repository
	Clock    application.Clock
	Interval time.Duration
}

// Run executes a sweep every Interval until ctx is done. One sweep per tick,
// single goroutine; each sweep is a short bounded scan so no cancellation of
// an in-flight sweep is needed.
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	log.Printf("retention: scheduler started interval=%s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("retention: sweep error: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("retention: sweep deleted %d expired records", deleted)
			}
		}
	}
}

// Sweep deletes every due record together with its file. A missing file is
// not an error; a per-record failure is logged and the sweep continues with
// the remaining candidates. Returns how many records were removed.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	due, err := s.Repo.ListDue(ctx, s.Clock.Now())
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, rec := range due {
		if err := os.Remove(rec.ScreenshotPath); err != nil && !os.IsNotExist(err) {
			log.Printf("retention: failed to remove file id=%s path=%s err=%v", rec.ID, rec.ScreenshotPath, err)
			continue
		}
		if err := s.Repo.Delete(ctx, rec.ID); err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				// Raced with a user delete; already gone is fine.
				continue
			}
			log.Printf("retention: failed to delete record id=%s err=%v", rec.ID, err)
			continue
		}
		deleted++
		log.Printf("retention: deleted expired record id=%s path=%s", rec.ID, rec.ScreenshotPath)
	}
	return deleted, nil
}

// MarkImmediate flags the record for deletion on the very next sweep.
func (s *Scheduler) MarkImmediate(ctx context.Context, id domain.RecordID) error {
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	yes := true
	now := s.Clock.Now()
	rec.ShouldBeDeleted = &yes
	rec.DeletionDate = &now
	return s.Repo.Update(ctx, rec)
}

// ListScheduled returns pending deletions ordered by ascending deletion date.
func (s *Scheduler) ListScheduled(ctx context.Context) ([]*domain.ScanRecord, error) {
	return s.Repo.ListScheduled(ctx)
}
