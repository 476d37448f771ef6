package port

import (
	"context"

	"property-scraper-service/internal/core/domain"
)

// ListingStoragePort persists extracted listings with upsert-by-URL
// semantics. Implementations must surface the domain storage sentinels
// (ErrTableMissing, ErrPermissionDenied, ErrDuplicateURL,
// ErrOwnershipConflict, ErrTypeMismatch) so callers can distinguish them.
type ListingStoragePort interface {
	UpsertByURL(ctx context.Context, listing domain.Listing, imagePaths []string, ownerID string) (string, error)
}
