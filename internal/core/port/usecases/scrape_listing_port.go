package usecases

import (
	"context"

	"property-scraper-service/internal/core/domain"
)

// ScrapeListingUseCase runs the full pipeline for one URL:
// fetch, detect portal, extract, re-host images, optionally persist.
type ScrapeListingUseCase interface {
	Execute(ctx context.Context, url string, cfg domain.ScraperConfig, ownerID string) domain.ScrapeResult
}

// ScrapeManyUseCase scrapes a de-duplicated batch of URLs with bounded
// request-level concurrency, returning one result per unique URL.
type ScrapeManyUseCase interface {
	Execute(ctx context.Context, urls []string, cfg domain.ScraperConfig, concurrency int, ownerID string) []domain.ScrapeResult
}

// ValidateURLUseCase checks a candidate URL without any network fetch.
type ValidateURLUseCase interface {
	Execute(ctx context.Context, url string) (bool, string)
}

// SaveListingUseCase persists an extracted listing and publishes the
// scraped-listing event. Returns the stored row id.
type SaveListingUseCase interface {
	Execute(ctx context.Context, listing domain.Listing, imagePaths []string, ownerID string) (string, error)
}
