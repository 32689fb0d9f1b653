package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/screenguard/internal/application"
	appscans "github.com/bryanwahyu/screenguard/internal/application/scans"
	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
)

// Config is an immutable snapshot passed in at construction. Multiple
// orchestrator instances do not share state.
type Config struct {
	RulesText    string
	UploadDir    string
	LocalBaseURL string        // fallback host serving /uploads, e.g. http://localhost:3001
	QuietPeriod  time.Duration // how long a file must stay unchanged before copy
	DedupTTL     time.Duration
	DedupMax     int
}

// Orchestrator drives the per-file lifecycle:
// detected -> dedup -> copy -> upload -> record -> classify -> merge.
// Each file runs in its own goroutine; the dedup set and the in-flight map
// are the only shared state.
type Orchestrator struct {
	cfg        Config
	scans      *appscans.Service
	uploads    domain.Uploader
	classifier domain.Classifier
	clock      application.Clock

	seen *seenSet

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

func New(cfg Config, scans *appscans.Service, uploads domain.Uploader, classifier domain.Classifier, clock application.Clock) *Orchestrator {
	if cfg.QuietPeriod <= 0 {
		cfg.QuietPeriod = time.Second
	}
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = time.Hour
	}
	if cfg.DedupMax <= 0 {
		cfg.DedupMax = 1024
	}
	return &Orchestrator{
		cfg:        cfg,
		scans:      scans,
		uploads:    uploads,
		classifier: classifier,
		clock:      clock,
		seen:       newSeenSet(cfg.DedupTTL, cfg.DedupMax),
		inflight:   make(map[string]struct{}),
	}
}

// Run consumes detection events until the channel closes or ctx is done.
func (o *Orchestrator) Run(ctx context.Context, events <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-events:
			if !ok {
				return
			}
			o.Handle(ctx, path)
		}
	}
}

// Handle starts a pipeline run for the path unless one already ran or is in
// flight. The dedup check happens before any side effect.
func (o *Orchestrator) Handle(ctx context.Context, path string) {
	if !o.begin(path) {
		return
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.end(path)
		o.process(ctx, path)
	}()
}

// Wait blocks until all in-flight pipeline runs finish.
func (o *Orchestrator) Wait() { o.wg.Wait() }

// begin claims the path. Held from detection through record creation so a
// second event for the same path while the first is in flight is coalesced.
func (o *Orchestrator) begin(path string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inflight[path]; busy {
		return false
	}
	if o.seen.Contains(path, o.clock.Now()) {
		return false
	}
	o.inflight[path] = struct{}{}
	return true
}

func (o *Orchestrator) end(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, path)
}

func (o *Orchestrator) process(ctx context.Context, path string) {
	if err := o.stabilize(path); err != nil {
		// File vanished or is empty: abort this file quietly.
		log.Printf("pipeline: skipping path=%s reason=%v", path, err)
		return
	}

	o.seen.Add(path, o.clock.Now())

	copied, err := o.copyToUploads(path)
	if err != nil {
		log.Printf("pipeline: copy failed path=%s err=%v", path, err)
		return
	}
	name := filepath.Base(copied)
	log.Printf("pipeline: screenshot detected path=%s copied=%s", filepath.Base(path), name)

	url, err := o.uploads.Upload(ctx, copied)
	if err != nil {
		// Degrade to the locally served URL so the pipeline still proceeds;
		// the classifier may fail on a non-public URL.
		url = strings.TrimSuffix(o.cfg.LocalBaseURL, "/") + "/uploads/" + name
		log.Printf("pipeline: upload degraded path=%s url=%s err=%v", name, url, err)
	}

	if _, err := o.scans.OpenScan(ctx, copied, url, o.cfg.RulesText); err != nil {
		log.Printf("pipeline: open scan failed path=%s err=%v", copied, err)
		return
	}

	verdict, err := o.classifier.Classify(ctx, url, o.cfg.RulesText)
	if err != nil {
		reason := failReason(err)
		log.Printf("pipeline: classification failed path=%s reason=%s err=%v", copied, reason, err)
		if markErr := o.scans.MarkFailed(ctx, copied, reason); markErr != nil {
			log.Printf("pipeline: mark failed path=%s err=%v", copied, markErr)
		}
		return
	}

	if err := o.scans.MergeResult(ctx, copied, verdict); err != nil {
		// Record may have been deleted while classification was running.
		log.Printf("pipeline: merge failed path=%s err=%v", copied, err)
		return
	}
	log.Printf("pipeline: scan completed path=%s classification=%s rating=%d",
		name, verdict.Classification, verdict.SensitivityRating)
}

// stabilize waits until the file has stopped changing. Screenshots arrive as
// a create event before the image is fully written.
func (o *Orchestrator) stabilize(path string) error {
	const maxRounds = 5

	prev, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file vanished: %w", err)
	}
	for i := 0; i < maxRounds; i++ {
		time.Sleep(o.cfg.QuietPeriod)
		cur, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("file vanished: %w", err)
		}
		if cur.Size() == prev.Size() && cur.ModTime().Equal(prev.ModTime()) {
			if cur.Size() == 0 {
				return errors.New("file is empty")
			}
			return nil
		}
		prev = cur
	}
	return errors.New("file did not stabilize")
}

// copyToUploads duplicates the screenshot into the managed upload dir under a
// collision-free name, keeping the original extension.
func (o *Orchestrator) copyToUploads(path string) (string, error) {
	if err := os.MkdirAll(o.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(path)
	name := fmt.Sprintf("user-screenshot-%s-%d%s", uuid.New().String(), o.clock.Now().UnixMilli(), ext)
	dst := filepath.Join(o.cfg.UploadDir, name)

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

func failReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrClassificationTimeout):
		return domain.FailReasonTimeout
	case errors.Is(err, domain.ErrMalformedVerdict):
		return domain.FailReasonMalformed
	default:
		return domain.FailReasonCrash
	}
}
