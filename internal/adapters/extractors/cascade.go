package extractors

import (
	"context"

	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/port"
)

// strategy is one source for a field. Strategies run in declaration order and
// the first non-empty result wins; later ones are never evaluated.
type strategy struct {
	name string
	fn   func() string
}

// runCascade resolves a field through its ordered strategies and records
// which source produced the value.
func runCascade(ctx context.Context, field string, strategies []strategy) string {
	logger := contextkeys.LoggerFromContext(ctx)

	for _, s := range strategies {
		if value := s.fn(); value != "" {
			logger.Debug("Field resolved", port.Fields{
				"field":    field,
				"strategy": s.name,
			})
			return value
		}
	}

	logger.Debug("Field unresolved, all strategies empty", port.Fields{"field": field})
	return ""
}
