package port

import (
	"context"

	"property-scraper-service/internal/core/domain"
)

// ExtractorPort converts raw portal markup into a Listing.
//
// CanHandle must be cheap: URL checks first, DOM signature checks only when
// the URL is inconclusive. Extract must not fail on missing fields: absent
// data yields zero values, never an error. An error is reserved for inputs
// that cannot be parsed as HTML at all.
type ExtractorPort interface {
	Name() string
	CanHandle(url, html string) bool
	Extract(ctx context.Context, html, url string) (domain.Listing, error)
}
