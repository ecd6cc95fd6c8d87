package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/spec-kit/blog-service/internal/config"
)

// Uploader pushes a binary image payload to an external asset host and
// returns a stable URL for it.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// HTTPUploader posts multipart payloads to the configured asset host. The
// host is expected to answer with {"secure_url": "..."} or {"url": "..."}.
type HTTPUploader struct {
	cfg    config.AssetsConfig
	client *http.Client
}

// NewHTTPUploader builds an uploader; returns nil when no upload URL is
// configured, which disables image handling.
func NewHTTPUploader(cfg config.AssetsConfig) *HTTPUploader {
	if cfg.UploadURL == "" {
		return nil
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPUploader{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// Upload sends the payload and returns the hosted URL.
func (u *HTTPUploader) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if u.cfg.Folder != "" {
		if err := writer.WriteField("folder", u.cfg.Folder); err != nil {
			return "", err
		}
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.UploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("asset host returned status %d", resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode asset host response: %w", err)
	}
	if parsed.SecureURL != "" {
		return parsed.SecureURL, nil
	}
	if parsed.URL != "" {
		return parsed.URL, nil
	}
	return "", fmt.Errorf("asset host response missing url")
}
