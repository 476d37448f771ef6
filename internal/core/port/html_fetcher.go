package port

import (
	"context"

	"property-scraper-service/internal/core/domain"
)

// HTMLFetcherPort downloads the raw markup of a listing page. Implementations
// retry transient failures with backoff and must tolerate garbled/non-UTF8
// bodies (returned as best-effort text).
type HTMLFetcherPort interface {
	FetchHTML(ctx context.Context, url string, cfg domain.ScraperConfig) (string, error)
}
