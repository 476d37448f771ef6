package imagepipeline

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"property-scraper-service/internal/constants"
	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
	"property-scraper-service/internal/scraperutil"
)

const maxImageBytes = 15 * 1024 * 1024

// Downloads smaller than this are almost always an error page or a tracking
// pixel, never a listing photo.
const minImageBytes = 1000

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp"}

var imageKeywords = []string{"image", "img", "photo", "picture", "foto", "imagen"}

var contentTypeByExt = map[string]string{
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
}

// Pipeline downloads listing photos and re-hosts them in blob storage. Work
// is bounded by a weighted semaphore; one slow or failing image never stalls
// or fails the rest of the batch.
type Pipeline struct {
	httpClient *http.Client
	blobStore  port.BlobStoragePort
}

func NewPipeline(blobStore port.BlobStoragePort) *Pipeline {
	return &Pipeline{
		httpClient: &http.Client{},
		blobStore:  blobStore,
	}
}

// ProcessAll re-hosts every image URL. Results come back in input order, one
// per unique URL; failed downloads are recorded, not propagated.
func (p *Pipeline) ProcessAll(ctx context.Context, urls []string, baseURL string, cfg domain.ImagePipelineConfig, ownerID string) []domain.ImageResult {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "ImagePipeline"})

	uniqueURLs := dedupe(urls)
	if len(uniqueURLs) == 0 {
		logger.Info("No image URLs to process", nil)
		return nil
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	logger.Info("Processing images", port.Fields{
		"total":          len(uniqueURLs),
		"max_concurrent": maxConcurrent,
	})

	sem := semaphore.NewWeighted(int64(maxConcurrent))
	results := make([]domain.ImageResult, len(uniqueURLs))

	var wg sync.WaitGroup
	for i, imageURL := range uniqueURLs {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = domain.ImageResult{OriginalURL: imageURL, Success: false, Error: err.Error()}
			continue
		}

		wg.Add(1)
		go func(index int, imageURL string) {
			defer wg.Done()
			defer sem.Release(1)
			results[index] = p.processOne(ctx, imageURL, index, baseURL, cfg, ownerID, logger)
		}(i, imageURL)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	logger.Info("Image processing finished", port.Fields{
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})

	return results
}

func (p *Pipeline) processOne(ctx context.Context, imageURL string, index int, baseURL string, cfg domain.ImagePipelineConfig, ownerID string, logger port.LoggerPort) domain.ImageResult {
	absoluteURL := scraperutil.ToAbsoluteURL(imageURL, baseURL)

	if !isLikelyImageURL(absoluteURL) {
		return domain.ImageResult{OriginalURL: imageURL, Success: false, Error: "invalid image URL"}
	}

	data, err := p.download(ctx, absoluteURL, cfg, logger)
	if err != nil {
		logger.Warn("Image download failed", port.Fields{
			"url":   absoluteURL,
			"index": index,
			"error": err.Error(),
		})
		return domain.ImageResult{OriginalURL: imageURL, Success: false, Error: err.Error()}
	}

	contentType := contentTypeFor(absoluteURL)
	storagePath := storageKey(absoluteURL, index, ownerID)

	result, err := p.blobStore.Upload(ctx, constants.ImagesBucket, storagePath, data, contentType, ownerID)
	if err != nil {
		logger.Warn("Image upload failed", port.Fields{
			"path":  storagePath,
			"error": err.Error(),
		})
		return domain.ImageResult{OriginalURL: imageURL, Success: false, Error: err.Error()}
	}

	return domain.ImageResult{
		OriginalURL: imageURL,
		StoredPath:  result.Path,
		Success:     true,
		Size:        len(data),
		ContentType: contentType,
	}
}

func (p *Pipeline) download(ctx context.Context, imageURL string, cfg domain.ImagePipelineConfig, logger port.LoggerPort) ([]byte, error) {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		data, err := p.downloadOnce(ctx, imageURL, cfg.Timeout)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt < retries {
			delay := time.Duration(1<<uint(attempt))*time.Second +
				time.Duration(rand.Int63n(int64(time.Second)))
			logger.Debug("Image attempt failed, backing off", port.Fields{
				"url":      imageURL,
				"attempt":  attempt + 1,
				"delay_ms": delay.Milliseconds(),
			})
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, lastErr
}

func (p *Pipeline) downloadOnce(ctx context.Context, imageURL string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", domain.DefaultScraperConfig.UserAgent)
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.8,en-US;q=0.5,en;q=0.3")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("downloaded content is not an image: %s", contentType)
	}

	// Read one byte past the cap so an oversized body is detected and
	// rejected instead of truncated.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("downloaded image too large (> %d bytes)", maxImageBytes)
	}
	if len(data) < minImageBytes {
		return nil, fmt.Errorf("downloaded image too small (%d bytes)", len(data))
	}

	return data, nil
}

// storageKey derives the blob path: md5 of the resolved URL plus the slot
// index keeps re-scrapes idempotent, and owner uploads land under the user's
// own prefix.
func storageKey(absoluteURL string, index int, ownerID string) string {
	sum := md5.Sum([]byte(absoluteURL))
	filename := fmt.Sprintf("%s_%d%s", hex.EncodeToString(sum[:]), index, extensionOf(absoluteURL))

	if ownerID != "" {
		return fmt.Sprintf("users/%s/properties/%s", ownerID, filename)
	}
	return "properties/" + filename
}

func extensionOf(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}
	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
		return ext
	}
	return ".jpg"
}

func contentTypeFor(imageURL string) string {
	if ct, ok := contentTypeByExt[extensionOf(imageURL)]; ok {
		return ct
	}
	return "image/jpeg"
}

// isLikelyImageURL is deliberately permissive: extension, then keyword, then
// any absolute http(s) URL. The content-type check after download is the real
// gate.
func isLikelyImageURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	lower := strings.ToLower(rawURL)

	withoutParams := lower
	if idx := strings.Index(lower, "?"); idx > 0 {
		withoutParams = lower[:idx]
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(withoutParams, ext) {
			return true
		}
	}

	for _, keyword := range imageKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var unique []string
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		unique = append(unique, u)
	}
	return unique
}
