package domain

import "time"

// ImagePipelineConfig controls the download-and-rehost subsystem.
// MaxWidth/MaxHeight/Quality are reserved for optional re-encoding and are
// not applied anywhere yet.
type ImagePipelineConfig struct {
	MaxConcurrent int
	MaxRetries    int
	Timeout       time.Duration
	MaxWidth      int
	MaxHeight     int
	Quality       int
}

// ScraperConfig is assembled once per top-level scrape call by merging the
// caller's overrides over DefaultScraperConfig and is passed down immutably.
type ScraperConfig struct {
	Retries   int
	Timeout   time.Duration
	UserAgent string
	Images    ImagePipelineConfig
}

// DefaultScraperConfig mirrors the process-wide defaults; per-request configs
// are merged over a copy of it.
var DefaultScraperConfig = ScraperConfig{
	Retries:   3,
	Timeout:   30 * time.Second,
	UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	Images: ImagePipelineConfig{
		MaxConcurrent: 5,
		MaxRetries:    3,
		Timeout:       15 * time.Second,
		MaxWidth:      1920,
		MaxHeight:     1080,
		Quality:       85,
	},
}

// Merged returns a copy of base with any non-zero override applied.
func (c ScraperConfig) Merged(override ScraperConfig) ScraperConfig {
	merged := c
	if override.Retries > 0 {
		merged.Retries = override.Retries
	}
	if override.Timeout > 0 {
		merged.Timeout = override.Timeout
	}
	if override.UserAgent != "" {
		merged.UserAgent = override.UserAgent
	}
	if override.Images.MaxConcurrent > 0 {
		merged.Images.MaxConcurrent = override.Images.MaxConcurrent
	}
	if override.Images.MaxRetries > 0 {
		merged.Images.MaxRetries = override.Images.MaxRetries
	}
	if override.Images.Timeout > 0 {
		merged.Images.Timeout = override.Images.Timeout
	}
	if override.Images.MaxWidth > 0 {
		merged.Images.MaxWidth = override.Images.MaxWidth
	}
	if override.Images.MaxHeight > 0 {
		merged.Images.MaxHeight = override.Images.MaxHeight
	}
	if override.Images.Quality > 0 {
		merged.Images.Quality = override.Images.Quality
	}
	return merged
}
