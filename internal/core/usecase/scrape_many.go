package usecase

import (
	"context"
	"sync"

	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
	"property-scraper-service/internal/core/port/usecases"
)

const defaultBatchConcurrency = 3

// ScrapeManyUseCase runs the single-URL pipeline over a batch. URLs are
// de-duplicated up front and processed in waves of at most `concurrency`
// listings; results keep the input order.
type ScrapeManyUseCase struct {
	scrapeOne usecases.ScrapeListingUseCase
}

func NewScrapeManyUseCase(scrapeOne usecases.ScrapeListingUseCase) *ScrapeManyUseCase {
	return &ScrapeManyUseCase{scrapeOne: scrapeOne}
}

func (uc *ScrapeManyUseCase) Execute(ctx context.Context, urls []string, cfg domain.ScraperConfig, concurrency int, ownerID string) []domain.ScrapeResult {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ScrapeMany",
	})

	if concurrency < 1 {
		concurrency = defaultBatchConcurrency
	}

	seen := make(map[string]bool, len(urls))
	var uniqueURLs []string
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		uniqueURLs = append(uniqueURLs, u)
	}

	if len(uniqueURLs) == 0 {
		return nil
	}

	ucLogger.Info("Scraping batch", port.Fields{
		"urls":        len(uniqueURLs),
		"concurrency": concurrency,
	})

	results := make([]domain.ScrapeResult, len(uniqueURLs))

	for batchStart := 0; batchStart < len(uniqueURLs); batchStart += concurrency {
		batchEnd := batchStart + concurrency
		if batchEnd > len(uniqueURLs) {
			batchEnd = len(uniqueURLs)
		}

		var wg sync.WaitGroup
		for i := batchStart; i < batchEnd; i++ {
			wg.Add(1)
			go func(index int) {
				defer wg.Done()
				results[index] = uc.scrapeOne.Execute(ctx, uniqueURLs[index], cfg, ownerID)
			}(i)
		}
		wg.Wait()
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	ucLogger.Info("Batch finished", port.Fields{
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})

	return results
}
