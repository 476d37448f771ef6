package usecase

import (
	"context"
	"net/url"
	"strings"

	"property-scraper-service/internal/constants"
	"property-scraper-service/internal/core/port"
)

// ValidateURLUseCase is the pre-flight check before a scrape is queued. It
// never touches the network: only the URL shape and the domain table decide.
type ValidateURLUseCase struct {
	detector port.PortalDetectorPort
}

func NewValidateURLUseCase(detector port.PortalDetectorPort) *ValidateURLUseCase {
	return &ValidateURLUseCase{detector: detector}
}

// Execute reports whether the URL points at a supported portal, and which
// one. Unknown portals are invalid here even though the generic extractor
// could still try them; callers that want best-effort scraping skip this
// check.
func (uc *ValidateURLUseCase) Execute(ctx context.Context, rawURL string) (bool, string) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return false, constants.PortalUnknown
	}

	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return false, constants.PortalUnknown
	}

	portal := uc.detector.Detect(rawURL, "")
	return portal != constants.PortalUnknown, portal
}
