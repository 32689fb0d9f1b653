package storage

import (
	"context"
	"log"

	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
)

// Chain tries each backend in priority order, one attempt per backend, no
// retry. A backend failure is logged and swallowed; only exhaustion is an
// error, and the caller degrades to a locally served URL.
type Chain struct {
	Backends []domain.Uploader
}

func NewChain(backends ...domain.Uploader) *Chain {
	return &Chain{Backends: backends}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Upload(ctx context.Context, localPath string) (string, error) {
	for _, b := range c.Backends {
		url, err := b.Upload(ctx, localPath)
		if err != nil {
			log.Printf("upload: backend=%s failed path=%s err=%v", b.Name(), localPath, err)
			continue
		}
		return url, nil
	}
	return "", domain.ErrAllUploadsFailed
}
