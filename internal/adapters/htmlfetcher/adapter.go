package htmlfetcher

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/gocolly/colly/v2"

	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
)

// CollyFetcherAdapter downloads listing pages. A parent collector carries the
// shared limits; each fetch runs on a clone so per-request callbacks do not
// leak between calls.
type CollyFetcherAdapter struct {
	collector *colly.Collector
}

func NewCollyFetcherAdapter() (*CollyFetcherAdapter, error) {
	c := colly.NewCollector(colly.AllowURLRevisit())

	err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 4,
		RandomDelay: 500 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("CollyFetcherAdapter: failed to set limit rule: %w", err)
	}

	return &CollyFetcherAdapter{collector: c}, nil
}

// FetchHTML retrieves the page body, retrying transient failures with
// exponential backoff plus jitter. Every attempt gets a fresh collector clone.
func (a *CollyFetcherAdapter) FetchHTML(ctx context.Context, url string, cfg domain.ScraperConfig) (string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "CollyFetcherAdapter"})

	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		html, err := a.fetchOnce(url, cfg, logger)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt < retries {
			delay := backoffDelay(attempt)
			logger.Warn("Fetch attempt failed, retrying", port.Fields{
				"url":      url,
				"attempt":  attempt,
				"retries":  retries,
				"delay_ms": delay.Milliseconds(),
				"error":    err.Error(),
			})
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return "", fmt.Errorf("FetchHTML: all %d attempts failed for %s: %w", retries, url, lastErr)
}

func (a *CollyFetcherAdapter) fetchOnce(url string, cfg domain.ScraperConfig, logger port.LoggerPort) (string, error) {
	collector := a.collector.Clone()
	collector.SetRequestTimeout(cfg.Timeout)

	var body string
	var fetchErr error

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", cfg.UserAgent)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "es-MX,es;q=0.9,en;q=0.8")
		logger.Debug("Requesting listing page", port.Fields{"url": r.URL.String()})
	})

	collector.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch %s: status %d: %w", url, r.StatusCode, err)
	})

	if err := collector.Visit(url); err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}
	if body == "" {
		return "", fmt.Errorf("fetch %s: empty response body", url)
	}
	return body, nil
}

// backoffDelay grows 2^attempt seconds with up to one extra second of jitter
// so parallel retries against the same portal spread out.
func backoffDelay(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	jitter := time.Duration(rand.Int63n(int64(time.Second)))
	return base + jitter
}
