package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
	usecases_port "property-scraper-service/internal/core/port/usecases"
)

// maxBatchSize bounds a single batch request so one caller cannot queue an
// unbounded amount of outbound crawling.
const maxBatchSize = 50

type ScrapeHandler struct {
	scrapeUC      usecases_port.ScrapeListingUseCase
	scrapeManyUC  usecases_port.ScrapeManyUseCase
	validateURLUC usecases_port.ValidateURLUseCase
	saveUC        usecases_port.SaveListingUseCase
}

func NewScrapeHandlers(scrapeUC usecases_port.ScrapeListingUseCase,
	scrapeManyUC usecases_port.ScrapeManyUseCase,
	validateURLUC usecases_port.ValidateURLUseCase,
	saveUC usecases_port.SaveListingUseCase) *ScrapeHandler {
	return &ScrapeHandler{
		scrapeUC:      scrapeUC,
		scrapeManyUC:  scrapeManyUC,
		validateURLUC: validateURLUC,
		saveUC:        saveUC,
	}
}

// Scrape handles POST /api/v1/scrape.
func (h *ScrapeHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var reqDTO ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		logger.Warn("Failed to decode scrape request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if reqDTO.URL == "" {
		logger.Warn("Missing 'url' in scrape request", nil)
		WriteJSONError(w, http.StatusBadRequest, "ScrapeHandler: url is required")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler": "Scrape",
		"url":     reqDTO.URL,
		"persist": reqDTO.Persist,
	})
	handlerLogger.Info("Processing request", nil)

	result := h.scrapeUC.Execute(r.Context(), reqDTO.URL, toScraperConfig(reqDTO.Config), reqDTO.OwnerID)
	response := ScrapeResponse{ScrapeResult: result}

	if !result.Success {
		handlerLogger.Warn("Scrape attempt failed", port.Fields{"error": result.Error})
		RespondWithJSON(w, http.StatusUnprocessableEntity, response)
		return
	}

	if reqDTO.Persist {
		status := h.persist(r.Context(), &response, reqDTO.OwnerID)
		if status != http.StatusOK {
			handlerLogger.Warn("Persist after scrape failed", port.Fields{"error": response.PersistError})
			RespondWithJSON(w, status, response)
			return
		}
	}

	handlerLogger.Info("Successfully scraped listing", port.Fields{
		"portal":      result.PortalDetected,
		"image_count": len(result.ImagePaths),
		"warnings":    len(result.Warnings),
	})
	RespondWithJSON(w, http.StatusOK, response)
}

// ScrapeBatch handles POST /api/v1/scrape/batch.
func (h *ScrapeHandler) ScrapeBatch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var reqDTO ScrapeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		logger.Warn("Failed to decode batch request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(reqDTO.URLs) == 0 {
		logger.Warn("Missing 'urls' in batch request", nil)
		WriteJSONError(w, http.StatusBadRequest, "ScrapeBatchHandler: urls is required")
		return
	}
	if len(reqDTO.URLs) > maxBatchSize {
		logger.Warn("Batch request too large", port.Fields{"count": len(reqDTO.URLs)})
		WriteJSONError(w, http.StatusBadRequest, "ScrapeBatchHandler: too many urls in one batch")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":     "ScrapeBatch",
		"url_count":   len(reqDTO.URLs),
		"concurrency": reqDTO.Concurrency,
		"persist":     reqDTO.Persist,
	})
	handlerLogger.Info("Processing request", nil)

	results := h.scrapeManyUC.Execute(r.Context(), reqDTO.URLs, toScraperConfig(reqDTO.Config), reqDTO.Concurrency, reqDTO.OwnerID)

	response := ScrapeBatchResponse{Results: make([]ScrapeResponse, len(results))}
	for i, result := range results {
		item := ScrapeResponse{ScrapeResult: result}
		if result.Success && reqDTO.Persist {
			h.persist(r.Context(), &item, reqDTO.OwnerID)
		}
		if !item.Success || item.PersistError != "" {
			response.Failed++
		}
		response.Results[i] = item
	}
	response.Total = len(response.Results)

	handlerLogger.Info("Batch finished", port.Fields{
		"total":  response.Total,
		"failed": response.Failed,
	})
	RespondWithJSON(w, http.StatusOK, response)
}

// ValidateURL handles GET /api/v1/validate-url. It never fetches the page.
func (h *ScrapeHandler) ValidateURL(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	url := r.URL.Query().Get("url")
	if url == "" {
		logger.Warn("Missing 'url' parameter", nil)
		WriteJSONError(w, http.StatusBadRequest, "ValidateURLHandler: url is required")
		return
	}

	valid, portal := h.validateURLUC.Execute(r.Context(), url)

	logger.Info("Validated URL", port.Fields{
		"handler": "ValidateURL",
		"url":     url,
		"valid":   valid,
		"portal":  portal,
	})
	RespondWithJSON(w, http.StatusOK, ValidateURLResponse{URL: url, Valid: valid, Portal: portal})
}

// persist stores the scraped listing and fills StoredID or PersistError on
// the response. Returns the HTTP status the caller should use.
func (h *ScrapeHandler) persist(ctx context.Context, response *ScrapeResponse, ownerID string) int {
	if h.saveUC == nil {
		response.PersistError = "persistence is not configured"
		return http.StatusNotImplemented
	}
	if response.Data == nil {
		response.PersistError = "nothing to persist"
		return http.StatusInternalServerError
	}

	id, err := h.saveUC.Execute(ctx, *response.Data, response.ImagePaths, ownerID)
	if err != nil {
		response.PersistError = err.Error()
		return storageErrorStatus(err)
	}
	response.StoredID = id
	return http.StatusOK
}

// storageErrorStatus maps the storage error taxonomy onto HTTP statuses.
func storageErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrOwnershipConflict), errors.Is(err, domain.ErrDuplicateURL):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// toScraperConfig converts the request overrides into the domain config.
// A nil request section leaves everything at the zero value, which the use
// case then merges over the process defaults.
func toScraperConfig(cfg *ScraperConfigRequest) domain.ScraperConfig {
	if cfg == nil {
		return domain.ScraperConfig{}
	}
	return domain.ScraperConfig{
		Retries:   cfg.Retries,
		Timeout:   time.Duration(cfg.TimeoutMs) * time.Millisecond,
		UserAgent: cfg.UserAgent,
		Images: domain.ImagePipelineConfig{
			MaxConcurrent: cfg.ImageConcurrency,
			MaxRetries:    cfg.ImageRetries,
			Timeout:       time.Duration(cfg.ImageTimeoutMs) * time.Millisecond,
		},
	}
}
