package sample

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

// HTTP status code constants.
const (
	StatusOK      = 200
	StatusCreated = 201
)

// UploadResponse is the part of the server's reply the uploader reads.
type UploadResponse struct {
	ID    string `json:"id"`
	RunID string `json:"run_id"`
}

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Upload posts the two documents as the multipart "events" and "metadata"
// parts of POST /v1/matches.
func (c *HTTPClient) Upload(ctx context.Context, baseURL string, events, metadata []byte) (UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	parts := []struct {
		field, file string
		data        []byte
	}{
		{"events", "events.json", events},
		{"metadata", "metadata.xml", metadata},
	}
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.file)
		if err != nil {
			return UploadResponse{}, fmt.Errorf("failed to create %s part: %w", p.field, err)
		}
		if _, err := fw.Write(p.data); err != nil {
			return UploadResponse{}, fmt.Errorf("failed to write %s part: %w", p.field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return UploadResponse{}, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/matches", &body)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("failed to upload match: %w", err)
	}
	raw, err := readResponseBody(resp)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusCreated {
		return UploadResponse{}, fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var out UploadResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return UploadResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
