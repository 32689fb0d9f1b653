package pipelex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
)

// writeEngineScript drops a shell script standing in for the engine. It runs
// inside the private staging dir, so inputs.json and result.json are cwd-
// relative exactly like the real workflow.
func writeEngineScript(t *testing.T, body string) []string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return []string{"/bin/sh", path}
}

func TestRunnerClassifies(t *testing.T) {
	cmd := writeEngineScript(t, `
cat > result.json <<'EOF'
{"classification": "CONFIDENTIAL", "sensitivity_rating": 8, "should_be_deleted": true, "deletion_date": "2026-09-02T00:00:00Z", "reasoning": "credentials"}
EOF
`)
	r := NewRunner(cmd, t.TempDir(), time.Minute)

	v, err := r.Classify(context.Background(), "https://img.example/x.png", "rules")
	require.NoError(t, err)
	assert.Equal(t, "CONFIDENTIAL", v.Classification)
	assert.Equal(t, 8, v.SensitivityRating)
	assert.True(t, v.ShouldBeDeleted)
}

func TestRunnerWritesInputsEnvelope(t *testing.T) {
	// Engine echoes the image URL it received back through the reasoning field.
	cmd := writeEngineScript(t, `
url=$(grep -o '"url": "[^"]*"' inputs.json | cut -d'"' -f4)
printf '{"classification": "PUBLIC", "sensitivity_rating": 0, "should_be_deleted": false, "reasoning": "%s"}' "$url" > result.json
`)
	r := NewRunner(cmd, t.TempDir(), time.Minute)

	v, err := r.Classify(context.Background(), "https://img.example/shot-1.png", "rules")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/shot-1.png", v.Reasoning)
}

func TestRunnerConcurrentInvocationsAreIsolated(t *testing.T) {
	cmd := writeEngineScript(t, `
sleep 0.05
url=$(grep -o '"url": "[^"]*"' inputs.json | cut -d'"' -f4)
printf '{"classification": "PUBLIC", "sensitivity_rating": 0, "should_be_deleted": false, "reasoning": "%s"}' "$url" > result.json
`)
	r := NewRunner(cmd, t.TempDir(), time.Minute)

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := r.Classify(context.Background(), fmt.Sprintf("https://img.example/shot-%d.png", i), "rules")
			if err == nil {
				results[i] = v.Reasoning
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		assert.Equal(t, fmt.Sprintf("https://img.example/shot-%d.png", i), results[i])
	}
}

func TestRunnerTimeout(t *testing.T) {
	cmd := writeEngineScript(t, "sleep 5\n")
	r := NewRunner(cmd, t.TempDir(), 50*time.Millisecond)

	_, err := r.Classify(context.Background(), "https://img.example/x.png", "rules")
	assert.ErrorIs(t, err, domain.ErrClassificationTimeout)
}

func TestRunnerCrash(t *testing.T) {
	cmd := writeEngineScript(t, "exit 3\n")
	r := NewRunner(cmd, t.TempDir(), time.Minute)

	_, err := r.Classify(context.Background(), "https://img.example/x.png", "rules")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrClassificationTimeout)
	assert.NotErrorIs(t, err, domain.ErrMalformedVerdict)
}

func TestRunnerMissingResultFile(t *testing.T) {
	cmd := writeEngineScript(t, "true\n")
	r := NewRunner(cmd, t.TempDir(), time.Minute)

	_, err := r.Classify(context.Background(), "https://img.example/x.png", "rules")
	assert.ErrorIs(t, err, domain.ErrMalformedVerdict)
}

func TestRunnerCleansStagingDir(t *testing.T) {
	cmd := writeEngineScript(t, `
printf '{"classification": "PUBLIC", "sensitivity_rating": 0, "should_be_deleted": false}' > result.json
`)
	workDir := t.TempDir()
	r := NewRunner(cmd, workDir, time.Minute)

	_, err := r.Classify(context.Background(), "https://img.example/x.png", "rules")
	require.NoError(t, err)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
