package constants

// Blob storage and database names shared by the adapters.
const (
	ImagesBucket  = "property-images"
	ListingsTable = "properties"
)

// RabbitMQ topology for scraped-listing events.
const (
	ScraperExchange          = "scraper_exchange"
	RoutingKeyScrapedListing = "listing.scraped"
)

// Event contract identifiers validated against the embedded schemas.
const (
	ScrapedListingEventType    = "ScrapedListingEvent"
	ScrapedListingEventVersion = "1.0.0"
)
