package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/screenguard/internal/domain/scans"
)

type stubBackend struct {
	name  string
	url   string
	err   error
	calls int
}

func (b *stubBackend) Name() string { return b.name }

func (b *stubBackend) Upload(context.Context, string) (string, error) {
	b.calls++
	if b.err != nil {
		return "", b.err
	}
	return b.url, nil
}

func TestChainFirstBackendWins(t *testing.T) {
	a := &stubBackend{name: "a", url: "https://a.example/x.png"}
	b := &stubBackend{name: "b", url: "https://b.example/x.png"}

	url, err := NewChain(a, b).Upload(context.Background(), "/tmp/x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example/x.png", url)
	assert.Equal(t, 0, b.calls)
}

func TestChainFallsBackOnFailure(t *testing.T) {
	a := &stubBackend{name: "a", err: errors.New("connection refused")}
	b := &stubBackend{name: "b", url: "https://b.example/x.png"}

	url, err := NewChain(a, b).Upload(context.Background(), "/tmp/x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example/x.png", url)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestChainExhaustion(t *testing.T) {
	a := &stubBackend{name: "a", err: errors.New("down")}
	b := &stubBackend{name: "b", err: errors.New("also down")}

	_, err := NewChain(a, b).Upload(context.Background(), "/tmp/x.png")
	assert.ErrorIs(t, err, domain.ErrAllUploadsFailed)
	// Exactly one attempt per backend, no retry.
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestImgurUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("png bytes"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Client-ID test-id", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "base64", body["type"])
		assert.NotEmpty(t, body["image"])
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"link": "https://i.imgur.com/abc.png"},
		})
	}))
	defer srv.Close()

	store := NewImgur("test-id")
	store.Endpoint = srv.URL

	url, err := store.Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://i.imgur.com/abc.png", url)
}

func TestImgurUploadErrorStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("png bytes"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	store := NewImgur("test-id")
	store.Endpoint = srv.URL

	_, err := store.Upload(context.Background(), path)
	assert.Error(t, err)
}

func TestImageContentType(t *testing.T) {
	assert.Equal(t, "image/png", imageContentType("/a/b.PNG"))
	assert.Equal(t, "image/jpeg", imageContentType("x.jpeg"))
	assert.Equal(t, "application/octet-stream", imageContentType("x.svg"))
}
