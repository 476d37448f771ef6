package extractors

import "property-scraper-service/internal/core/port"

// DefaultRegistry returns the extractors in selection order. Portal-specific
// extractors come first; the generic one accepts everything and must stay
// last.
func DefaultRegistry() []port.ExtractorPort {
	return []port.ExtractorPort{
		NewCentury21Extractor(),
		NewGenericExtractor(),
	}
}
