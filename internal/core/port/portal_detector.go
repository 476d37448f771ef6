package port

// PortalDetectorPort identifies which supported portal a listing belongs to.
// Detect returns a portal identifier from internal/constants; DisplayName maps
// it to the user-facing name.
type PortalDetectorPort interface {
	Detect(url, html string) string
	DisplayName(portal string) string
}
