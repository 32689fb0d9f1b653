package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsScreenshotFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/tmp/Screenshot 2026-08-30.png", true},
		{"/tmp/screen shot 2026-08-30.jpg", true},
		{"/tmp/Screen_Shot_company.jpeg", true},
		{"/tmp/Capture d'ecran.png", true},
		{"/tmp/Screen_Recording_2026.gif", true},
		{"/tmp/screen recording 2026.tiff", true},
		{"/tmp/CleanShot 2026-08-30 at 09.14.22.png", true},
		{"/tmp/2026-08-30 at 9.41.12 AM.png", true},
		{"/tmp/vacation.png", false},
		{"/tmp/screenshot.txt", false},
		{"/tmp/.screenshot-hidden.png", false},
		{"/tmp/invoice.pdf", false},
		{"/tmp/report-screenshot.png", false}, // prefix match only
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsScreenshotFile(tc.path), tc.path)
	}
}

func TestWatcherForwardsScreenshots(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Screenshot test.png"), []byte("img"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("na"), 0o644))

	select {
	case got := <-w.Events:
		assert.Equal(t, filepath.Join(dir, "Screenshot test.png"), got)
	case <-time.After(2 * time.Second):
		t.Fatal("no event within 2s")
	}

	// the .txt must never come through
	select {
	case got := <-w.Events:
		// a second Write event for the same screenshot is fine
		assert.Equal(t, filepath.Join(dir, "Screenshot test.png"), got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
