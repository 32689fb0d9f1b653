package scans

import (
	"context"
	"time"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Create(ctx context.Context, rec *ScanRecord) error
	Get(ctx context.Context, id RecordID) (*ScanRecord, error)
	FindPendingByPath(ctx context.Context, path string) (*ScanRecord, error)
	Update(ctx context.Context, rec *ScanRecord) error
	Delete(ctx context.Context, id RecordID) error
	ListAll(ctx context.Context) ([]*ScanRecord, error)
	ListDue(ctx context.Context, now time.Time) ([]*ScanRecord, error)
	ListScheduled(ctx context.Context) ([]*ScanRecord, error)
}

// Uploader port (interface untuk satu upload backend)
type Uploader interface {
	Name() string
	Upload(ctx context.Context, localPath string) (string, error)
}

// Classifier port (interface untuk external classification engine)
type Classifier interface {
	Classify(ctx context.Context, imageURL, rulesText string) (*Verdict, error)
}
