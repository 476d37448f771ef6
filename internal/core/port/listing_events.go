package port

import (
	"context"

	"property-scraper-service/internal/core/domain"
)

// ListingEventsPort announces successfully stored listings to downstream
// consumers. Publishing failures must not fail the scrape itself.
type ListingEventsPort interface {
	PublishScraped(ctx context.Context, listing domain.Listing, imagePaths []string) error
}
