package usecase

import (
	"context"
	"fmt"
	"time"

	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
	"property-scraper-service/internal/scraperutil"
)

// ScrapeListingUseCase runs the pipeline for a single listing URL:
// fetch, detect the portal, pick an extractor, extract, re-host images.
// Image failures degrade to warnings; fetch and extraction failures are
// terminal for the attempt.
type ScrapeListingUseCase struct {
	fetcher    port.HTMLFetcherPort
	detector   port.PortalDetectorPort
	extractors []port.ExtractorPort
	images     port.ImagePipelinePort
}

func NewScrapeListingUseCase(
	fetcher port.HTMLFetcherPort,
	detector port.PortalDetectorPort,
	extractors []port.ExtractorPort,
	images port.ImagePipelinePort,
) *ScrapeListingUseCase {
	return &ScrapeListingUseCase{
		fetcher:    fetcher,
		detector:   detector,
		extractors: extractors,
		images:     images,
	}
}

func (uc *ScrapeListingUseCase) Execute(ctx context.Context, url string, cfg domain.ScraperConfig, ownerID string) domain.ScrapeResult {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ScrapeListing",
		"url":      url,
	})

	merged := domain.DefaultScraperConfig.Merged(cfg)
	start := time.Now()
	var warnings []string

	elapsedMs := func() int64 { return time.Since(start).Milliseconds() }

	html, err := uc.fetcher.FetchHTML(ctx, url, merged)
	if err != nil {
		ucLogger.Error("Failed to fetch listing page", err, nil)
		return domain.ScrapeResult{
			Success:      false,
			Error:        fmt.Sprintf("failed to fetch page: %v", err),
			ProcessingMs: elapsedMs(),
		}
	}

	portal := uc.detector.Detect(url, html)
	portalName := uc.detector.DisplayName(portal)
	ucLogger.Debug("Portal detected", port.Fields{"portal": portal})

	extractor := uc.selectExtractor(url, html)
	if extractor == nil {
		ucLogger.Error("No compatible extractor", domain.ErrNoExtractor, nil)
		return domain.ScrapeResult{
			Success:        false,
			Error:          domain.ErrNoExtractor.Error(),
			PortalDetected: portalName,
			ProcessingMs:   elapsedMs(),
		}
	}

	ucLogger.Info("Extracting listing", port.Fields{"extractor": extractor.Name()})

	listing, err := extractor.Extract(ctx, html, url)
	if err != nil {
		ucLogger.Error("Extraction failed", err, nil)
		return domain.ScrapeResult{
			Success:        false,
			Error:          fmt.Sprintf("extraction failed: %v", err),
			PortalDetected: portalName,
			ProcessingMs:   elapsedMs(),
		}
	}

	if listing.Portal == "" {
		listing.Portal = portal
	}
	if listing.ID == "" {
		listing.ID = scraperutil.GenerateIDFromURL(url)
	}

	var imagePaths []string
	if len(listing.Images) > 0 {
		results := uc.images.ProcessAll(ctx, listing.Images, url, merged.Images, ownerID)

		failed := 0
		for _, r := range results {
			if r.Success && r.StoredPath != "" {
				imagePaths = append(imagePaths, r.StoredPath)
			} else {
				failed++
			}
		}
		if failed > 0 {
			warnings = append(warnings, fmt.Sprintf("%d images could not be processed", failed))
		}
	}

	ucLogger.Info("Listing scraped", port.Fields{
		"listing_id":  listing.ID,
		"portal":      listing.Portal,
		"images":      len(listing.Images),
		"image_paths": len(imagePaths),
	})

	return domain.ScrapeResult{
		Success:        true,
		Data:           &listing,
		ImagePaths:     imagePaths,
		PortalDetected: portalName,
		ProcessingMs:   elapsedMs(),
		Warnings:       warnings,
	}
}

// selectExtractor returns the first extractor that accepts the page. The
// registry keeps the generic catch-all last, so portal extractors get first
// refusal.
func (uc *ScrapeListingUseCase) selectExtractor(url, html string) port.ExtractorPort {
	for _, e := range uc.extractors {
		if e.CanHandle(url, html) {
			return e
		}
	}
	return nil
}
