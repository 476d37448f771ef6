package rest

import "property-scraper-service/internal/core/domain"

// ScraperConfigRequest carries the optional per-request overrides. Zero
// values mean "use the service default"; timeouts are milliseconds.
type ScraperConfigRequest struct {
	Retries          int    `json:"retries,omitempty"`
	TimeoutMs        int64  `json:"timeout_ms,omitempty"`
	UserAgent        string `json:"user_agent,omitempty"`
	ImageConcurrency int    `json:"image_concurrency,omitempty"`
	ImageRetries     int    `json:"image_retries,omitempty"`
	ImageTimeoutMs   int64  `json:"image_timeout_ms,omitempty"`
}

type ScrapeRequest struct {
	URL     string                `json:"url"`
	Config  *ScraperConfigRequest `json:"config,omitempty"`
	Persist bool                  `json:"persist,omitempty"`
	OwnerID string                `json:"owner_id,omitempty"`
}

type ScrapeBatchRequest struct {
	URLs        []string              `json:"urls"`
	Concurrency int                   `json:"concurrency,omitempty"`
	Config      *ScraperConfigRequest `json:"config,omitempty"`
	Persist     bool                  `json:"persist,omitempty"`
	OwnerID     string                `json:"owner_id,omitempty"`
}

// ScrapeResponse is the scrape result plus the persistence outcome when the
// caller asked for persist=true.
type ScrapeResponse struct {
	domain.ScrapeResult
	StoredID     string `json:"stored_id,omitempty"`
	PersistError string `json:"persist_error,omitempty"`
}

type ScrapeBatchResponse struct {
	Results []ScrapeResponse `json:"results"`
	Total   int              `json:"total"`
	Failed  int              `json:"failed"`
}

type ValidateURLResponse struct {
	URL    string `json:"url"`
	Valid  bool   `json:"valid"`
	Portal string `json:"portal,omitempty"`
}
