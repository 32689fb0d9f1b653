package scans

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// memRepo is a thread-safe in-memory Repository for tests.
type memRepo struct {
	mu   sync.Mutex
	recs map[domain.RecordID]*domain.ScanRecord
}

func newMemRepo() *memRepo {
	return &memRepo{recs: map[domain.RecordID]*domain.ScanRecord{}}
}

func (r *memRepo) Create(_ context.Context, rec *domain.ScanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.recs[rec.ID] = &cp
	return nil
}

func (r *memRepo) Get(_ context.Context, id domain.RecordID) (*domain.ScanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memRepo) FindPendingByPath(_ context.Context, path string) (*domain.ScanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.recs {
		if rec.ScreenshotPath == path && rec.Status == domain.StatusPending {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *memRepo) Update(_ context.Context, rec *domain.ScanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recs[rec.ID]; !ok {
		return domain.ErrRecordNotFound
	}
	cp := *rec
	r.recs[rec.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id domain.RecordID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recs[id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(r.recs, id)
	return nil
}

func (r *memRepo) ListAll(_ context.Context) ([]*domain.ScanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ScanRecord
	for _, rec := range r.recs {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memRepo) ListDue(_ context.Context, now time.Time) ([]*domain.ScanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ScanRecord
	for _, rec := range r.recs {
		if rec.DueForDeletion(now) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) ListScheduled(_ context.Context) ([]*domain.ScanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ScanRecord
	for _, rec := range r.recs {
		if rec.ShouldBeDeleted != nil && *rec.ShouldBeDeleted && rec.DeletionDate != nil {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeletionDate.Before(*out[j].DeletionDate) })
	return out, nil
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	svc := &Service{
		Repo:  repo,
		Clock: fixedClock{t: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)},
	}
	return svc, repo
}

func TestOpenScanThenMergeResult(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.OpenScan(ctx, "/uploads/shot.png", "https://img.example/shot.png", "rules")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, rec.Status)
	assert.Nil(t, rec.ProcessedAt)

	v := &domain.Verdict{Classification: "INTERNAL", SensitivityRating: 6, ShouldBeDeleted: false, Reasoning: "dashboard"}
	require.NoError(t, svc.MergeResult(ctx, "/uploads/shot.png", v))

	rec, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, rec.Status)
	assert.Equal(t, "INTERNAL", rec.Classification)
	require.NotNil(t, rec.SensitivityRating)
	assert.Equal(t, 6, *rec.SensitivityRating)
	require.NotNil(t, rec.ShouldBeDeleted)
	assert.False(t, *rec.ShouldBeDeleted)
	require.NotNil(t, rec.ProcessedAt)
}

func TestOpenScanRejectsDuplicatePending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.OpenScan(ctx, "/uploads/shot.png", "u1", "rules")
	require.NoError(t, err)

	_, err = svc.OpenScan(ctx, "/uploads/shot.png", "u2", "rules")
	assert.ErrorIs(t, err, domain.ErrDuplicatePending)

	recs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestOpenScanAllowedAgainAfterCompletion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.OpenScan(ctx, "/uploads/shot.png", "u1", "rules")
	require.NoError(t, err)
	require.NoError(t, svc.MergeResult(ctx, "/uploads/shot.png", &domain.Verdict{
		Classification: "PUBLIC", SensitivityRating: 1,
	}))

	// Path uniqueness only applies among pending records.
	_, err = svc.OpenScan(ctx, "/uploads/shot.png", "u2", "rules")
	assert.NoError(t, err)
}

func TestMergeResultWithoutPendingRecord(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.MergeResult(context.Background(), "/uploads/nope.png", &domain.Verdict{
		Classification: "PUBLIC", SensitivityRating: 0,
	})
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestMarkFailed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.OpenScan(ctx, "/uploads/shot.png", "u1", "rules")
	require.NoError(t, err)

	require.NoError(t, svc.MarkFailed(ctx, "/uploads/shot.png", domain.FailReasonTimeout))

	rec, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, rec.Status)
	assert.Equal(t, domain.FailReasonTimeout, rec.FailReason)
	// Never silently completed with null fields.
	assert.Nil(t, rec.SensitivityRating)
	assert.Nil(t, rec.ProcessedAt)
}

func TestDeleteRemovesFileAndRecord(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	id, err := svc.OpenScan(ctx, path, "u1", "rules")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestDeleteToleratesMissingFileAndRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.OpenScan(ctx, filepath.Join(t.TempDir(), "gone.png"), "u1", "rules")
	require.NoError(t, err)

	// File never existed on disk.
	require.NoError(t, svc.Delete(ctx, id))
	// Record already gone.
	require.NoError(t, svc.Delete(ctx, id))
}
