package domain

import "errors"

// Storage error taxonomy. The postgres adapter maps SQLSTATE codes onto these
// sentinels so callers can react differently (prompt to run setup vs report a
// conflict) instead of parsing error strings.
var (
	// ErrTableMissing means the listings table has not been created yet.
	ErrTableMissing = errors.New("listings table does not exist")

	// ErrPermissionDenied means the database role is not allowed to write.
	ErrPermissionDenied = errors.New("permission denied by storage")

	// ErrDuplicateURL means the source URL is already stored.
	ErrDuplicateURL = errors.New("listing with this URL already exists")

	// ErrOwnershipConflict means the stored listing belongs to another owner.
	ErrOwnershipConflict = errors.New("listing is owned by a different user")

	// ErrTypeMismatch means a column/value type disagreement, usually a schema
	// drift between the service and the database.
	ErrTypeMismatch = errors.New("storage type mismatch")
)

// ErrNoExtractor is returned when no extractor accepts a page. Only reachable
// if the generic fallback has been removed from the extractor list.
var ErrNoExtractor = errors.New("no compatible extractor for this URL")

// ErrInvalidURL rejects malformed or non-http(s) input before any network use.
var ErrInvalidURL = errors.New("invalid listing URL")
