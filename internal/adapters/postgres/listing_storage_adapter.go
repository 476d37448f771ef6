package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
)

// SQLSTATE codes the adapter translates into domain sentinels.
const (
	codeUndefinedTable        = "42P01"
	codeInsufficientPrivilege = "42501"
	codeUniqueViolation       = "23505"
	codeDatatypeMismatch      = "42804"
	codeInvalidTextRepr       = "22P02"
)

// ListingStorageAdapter implements ListingStoragePort on PostgreSQL.
type ListingStorageAdapter struct {
	pool *pgxpool.Pool
}

func NewListingStorageAdapter(pool *pgxpool.Pool) (*ListingStorageAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ListingStorageAdapter{pool: pool}, nil
}

const upsertListingSQL = `
	INSERT INTO properties (
		id, url, description, features, summary, images, image_paths,
		price_mxn, price_usd, location, geohash, property_type, operation,
		details, amenities, portal, owner_id, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, now(), now()
	)
	ON CONFLICT (url) DO UPDATE SET
		description   = EXCLUDED.description,
		features      = EXCLUDED.features,
		summary       = EXCLUDED.summary,
		images        = EXCLUDED.images,
		image_paths   = EXCLUDED.image_paths,
		price_mxn     = EXCLUDED.price_mxn,
		price_usd     = EXCLUDED.price_usd,
		location      = EXCLUDED.location,
		geohash       = EXCLUDED.geohash,
		property_type = EXCLUDED.property_type,
		operation     = EXCLUDED.operation,
		details       = EXCLUDED.details,
		amenities     = EXCLUDED.amenities,
		portal        = EXCLUDED.portal,
		updated_at    = now()
	WHERE properties.owner_id IS NOT DISTINCT FROM EXCLUDED.owner_id
	RETURNING id;
`

// UpsertByURL inserts the listing or refreshes the existing row for the same
// URL. The conflict update only fires when the stored row belongs to the same
// owner; an owner mismatch surfaces as ErrOwnershipConflict.
func (a *ListingStorageAdapter) UpsertByURL(ctx context.Context, listing domain.Listing, imagePaths []string, ownerID string) (string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ListingStorageAdapter",
		"method":    "UpsertByURL",
	})

	featuresJSON, err := json.Marshal(listing.Features)
	if err != nil {
		return "", fmt.Errorf("failed to marshal features: %w", err)
	}
	detailsJSON, err := json.Marshal(listing.Details)
	if err != nil {
		return "", fmt.Errorf("failed to marshal details: %w", err)
	}

	var owner any
	if ownerID != "" {
		owner = ownerID
	}

	var id string
	err = a.pool.QueryRow(ctx, upsertListingSQL,
		listing.ID, listing.URL, listing.Description, featuresJSON, listing.Summary,
		listing.Images, imagePaths,
		listing.Price.MXN, listing.Price.USD, listing.Location, listing.Geohash,
		listing.PropertyType, listing.Operation,
		detailsJSON, listing.Amenities, listing.Portal, owner,
	).Scan(&id)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The row exists but the owner guard suppressed the update.
			logger.Warn("Upsert refused, listing owned by another user", port.Fields{"url": listing.URL})
			return "", domain.ErrOwnershipConflict
		}
		classified := classifyPgError(err)
		logger.Error("Failed to upsert listing", classified, port.Fields{"url": listing.URL})
		return "", classified
	}

	logger.Info("Listing upserted", port.Fields{"id": id, "url": listing.URL})
	return id, nil
}

// classifyPgError wraps known SQLSTATE codes in the domain sentinels so the
// original driver error stays available through errors.Unwrap.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUndefinedTable:
		return fmt.Errorf("%w: %w", domain.ErrTableMissing, err)
	case codeInsufficientPrivilege:
		return fmt.Errorf("%w: %w", domain.ErrPermissionDenied, err)
	case codeUniqueViolation:
		return fmt.Errorf("%w: %w", domain.ErrDuplicateURL, err)
	case codeDatatypeMismatch, codeInvalidTextRepr:
		return fmt.Errorf("%w: %w", domain.ErrTypeMismatch, err)
	default:
		return err
	}
}
