package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"property-scraper-service/internal/core/domain"
)

type countingScraper struct {
	mu       sync.Mutex
	seen     []string
	inFlight int64
	maxSeen  int64
}

func (c *countingScraper) Execute(ctx context.Context, url string, cfg domain.ScraperConfig, ownerID string) domain.ScrapeResult {
	current := atomic.AddInt64(&c.inFlight, 1)
	for {
		max := atomic.LoadInt64(&c.maxSeen)
		if current <= max || atomic.CompareAndSwapInt64(&c.maxSeen, max, current) {
			break
		}
	}
	defer atomic.AddInt64(&c.inFlight, -1)

	c.mu.Lock()
	c.seen = append(c.seen, url)
	c.mu.Unlock()

	return domain.ScrapeResult{Success: true, Data: &domain.Listing{URL: url}}
}

func TestScrapeManyDeduplicatesAndKeepsOrder(t *testing.T) {
	scraper := &countingScraper{}
	uc := NewScrapeManyUseCase(scraper)

	urls := []string{"https://x.mx/1", "https://x.mx/2", "https://x.mx/1", "", "https://x.mx/3"}
	results := uc.Execute(context.Background(), urls, domain.ScraperConfig{}, 2, "")

	if len(results) != 3 {
		t.Fatalf("results: got %d, want 3 (duplicates and empties dropped)", len(results))
	}
	want := []string{"https://x.mx/1", "https://x.mx/2", "https://x.mx/3"}
	for i, w := range want {
		if results[i].Data.URL != w {
			t.Errorf("result %d: got %q, want %q", i, results[i].Data.URL, w)
		}
	}
}

func TestScrapeManyConcurrencyBound(t *testing.T) {
	scraper := &countingScraper{}
	uc := NewScrapeManyUseCase(scraper)

	urls := make([]string, 12)
	for i := range urls {
		urls[i] = "https://x.mx/" + string(rune('a'+i))
	}

	uc.Execute(context.Background(), urls, domain.ScraperConfig{}, 3, "")

	if got := atomic.LoadInt64(&scraper.maxSeen); got > 3 {
		t.Errorf("max concurrent scrapes: got %d, want <= 3", got)
	}
	if len(scraper.seen) != 12 {
		t.Errorf("all urls must be processed: got %d", len(scraper.seen))
	}
}

func TestScrapeManyDefaultConcurrency(t *testing.T) {
	scraper := &countingScraper{}
	uc := NewScrapeManyUseCase(scraper)

	results := uc.Execute(context.Background(), []string{"https://x.mx/1"}, domain.ScraperConfig{}, 0, "")
	if len(results) != 1 {
		t.Fatalf("results: got %d", len(results))
	}
}

func TestScrapeManyEmptyInput(t *testing.T) {
	uc := NewScrapeManyUseCase(&countingScraper{})
	if results := uc.Execute(context.Background(), nil, domain.ScraperConfig{}, 3, ""); results != nil {
		t.Errorf("empty input: got %v", results)
	}
}
