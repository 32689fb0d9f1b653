package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const imgurUploadURL = "https://api.imgur.com/3/image"

// ImgurStore uploads anonymously to the Imgur image API. Used as the backup
// backend when the primary object store is unreachable.
type ImgurStore struct {
	ClientID string
	HTTP     *http.Client
	// Endpoint overrideable untuk test
	Endpoint string
}

func NewImgur(clientID string) *ImgurStore {
	return &ImgurStore{
		ClientID: clientID,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Endpoint: imgurUploadURL,
	}
}

func (s *ImgurStore) Name() string { return "imgur" }

func (s *ImgurStore) Upload(ctx context.Context, localPath string) (string, error) {
	raw, err := os.ReadFile(localPath)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString(raw),
		"type":  "base64",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Client-ID "+s.ClientID)

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("imgur upload returned status %d", resp.StatusCode)
	}

	var out struct {
		Success bool `json:"success"`
		Data    struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("imgur response decode: %w", err)
	}
	if !out.Success || out.Data.Link == "" {
		return "", fmt.Errorf("invalid imgur response")
	}
	return out.Data.Link, nil
}
