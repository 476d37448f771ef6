package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/port"
)

// Client talks to a Supabase-compatible storage API. Uploads use the service
// role key so row-level security on the bucket does not block server-side
// re-hosting; the owner is still recorded for later access checks.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{},
	}
}

func (c *Client) Upload(ctx context.Context, bucket, path string, data []byte, contentType, ownerID string) (port.UploadResult, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "BlobStoreClient",
		"method":    "Upload",
	})

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, bucket, path)
	logger.Debug("Uploading object", port.Fields{"url": url, "bytes": len(data)})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return port.UploadResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	// Re-scrapes hit the same deterministic path; overwrite instead of 409.
	req.Header.Set("x-upsert", "true")
	if ownerID != "" {
		req.Header.Set("x-metadata-owner", ownerID)
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Failed to perform upload request", err, nil)
		return port.UploadResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("blob storage returned non-success status code %d: %s", resp.StatusCode, string(bodyBytes))
		logger.Error("Received error response from blob storage", err, port.Fields{"status_code": resp.StatusCode})
		return port.UploadResult{}, err
	}

	logger.Info("Object uploaded", port.Fields{"bucket": bucket, "path": path})

	return port.UploadResult{
		Path:      path,
		PublicURL: fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, path),
	}, nil
}
