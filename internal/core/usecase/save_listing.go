package usecase

import (
	"context"

	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
)

// SaveListingUseCase persists a scraped listing and announces it. Persistence
// failures propagate with their sentinel intact so the transport layer can
// map them; a broken event broker only costs the announcement.
type SaveListingUseCase struct {
	storage port.ListingStoragePort
	events  port.ListingEventsPort
}

// NewSaveListingUseCase wires the persistence path. events may be nil when the
// service runs without a broker.
func NewSaveListingUseCase(storage port.ListingStoragePort, events port.ListingEventsPort) *SaveListingUseCase {
	return &SaveListingUseCase{
		storage: storage,
		events:  events,
	}
}

func (uc *SaveListingUseCase) Execute(ctx context.Context, listing domain.Listing, imagePaths []string, ownerID string) (string, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "SaveListing",
		"listing_id": listing.ID,
	})

	id, err := uc.storage.UpsertByURL(ctx, listing, imagePaths, ownerID)
	if err != nil {
		ucLogger.Error("Failed to persist listing", err, nil)
		return "", err
	}

	if uc.events != nil {
		if err := uc.events.PublishScraped(ctx, listing, imagePaths); err != nil {
			// The listing is already stored; losing the event is not worth
			// failing the whole request over.
			ucLogger.Warn("Listing stored but event publish failed", port.Fields{"error": err.Error()})
		}
	}

	ucLogger.Info("Listing persisted", port.Fields{"id": id})
	return id, nil
}
