package pipelex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
)

const (
	inputsFile     = "inputs.json"
	resultFile     = "result.json"
	defaultTimeout = 2 * time.Minute
)

// Runner invokes the Pipelex sensitivity workflow as an external process.
// Each invocation gets a private uuid-named staging directory for its input
// and output artifacts, so concurrent classifications of different files
// never read each other's state. The process gets one bounded attempt; the
// operator decides about retries.
type Runner struct {
	Command []string // engine command, e.g. ["python3", "run_pipelex.py"]
	WorkDir string   // base directory for per-invocation staging dirs
	Timeout time.Duration
}

func NewRunner(command []string, workDir string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{Command: command, WorkDir: workDir, Timeout: timeout}
}

// engineInputs is the envelope the workflow expects in inputs.json.
type engineInputs struct {
	Image struct {
		Concept string `json:"concept"`
		Content struct {
			URL string `json:"url"`
		} `json:"content"`
	} `json:"image"`
	Rules struct {
		Concept string `json:"concept"`
		Content string `json:"content"`
	} `json:"rules"`
}

func (r *Runner) Classify(ctx context.Context, imageURL, rulesText string) (*domain.Verdict, error) {
	if len(r.Command) == 0 {
		return nil, errors.New("pipelex: no engine command configured")
	}

	stage := filepath.Join(r.WorkDir, uuid.New().String())
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return nil, fmt.Errorf("pipelex: create staging dir: %w", err)
	}
	defer os.RemoveAll(stage)

	var in engineInputs
	in.Image.Concept = "native.Image"
	in.Image.Content.URL = imageURL
	in.Rules.Concept = "native.Text"
	in.Rules.Content = rulesText

	raw, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(stage, inputsFile), raw, 0o644); err != nil {
		return nil, fmt.Errorf("pipelex: write inputs: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.Command[0], r.Command[1:]...)
	cmd.Dir = stage

	out, err := cmd.CombinedOutput()
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w after %s", domain.ErrClassificationTimeout, r.Timeout)
		}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return nil, fmt.Errorf("pipelex: engine exited with code %d, output=%s", ee.ExitCode(), string(out))
		}
		return nil, fmt.Errorf("pipelex: run error: %v, output=%s", err, string(out))
	}

	resultRaw, err := os.ReadFile(filepath.Join(stage, resultFile))
	if err != nil {
		return nil, fmt.Errorf("%w: engine produced no result file", domain.ErrMalformedVerdict)
	}
	return domain.ParseVerdict(resultRaw)
}
