package port

import (
	"context"

	"property-scraper-service/internal/core/domain"
)

// ImagePipelinePort downloads and re-hosts discovered image URLs.
//
// Implementations collapse duplicate input URLs, keep at most
// cfg.MaxConcurrent downloads in flight and return one ImageResult per unique
// URL. Individual failures never abort the batch.
type ImagePipelinePort interface {
	ProcessAll(ctx context.Context, urls []string, baseURL string, cfg domain.ImagePipelineConfig, ownerID string) []domain.ImageResult
}
