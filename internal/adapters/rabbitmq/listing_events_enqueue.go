package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"property-scraper-service/internal/constants"
	"property-scraper-service/internal/contextkeys"
	"property-scraper-service/internal/contracts"
	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
)

// messagePublisher is what the adapter needs from Publisher; tests swap in a
// recorder.
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// ScrapedListingEventDTO is the wire shape of a scraped-listing event. It is
// validated against the embedded schema before every publish.
type ScrapedListingEventDTO struct {
	ID           string       `json:"id"`
	URL          string       `json:"url"`
	Portal       string       `json:"portal"`
	Description  string       `json:"description,omitempty"`
	Location     string       `json:"location,omitempty"`
	Geohash      string       `json:"geohash,omitempty"`
	PropertyType string       `json:"property_type,omitempty"`
	Operation    string       `json:"operation,omitempty"`
	Price        domain.Price `json:"price"`
	Images       []string     `json:"images,omitempty"`
	ImagePaths   []string     `json:"image_paths,omitempty"`
	ScrapedAt    time.Time    `json:"scraped_at"`
}

// ListingEventsAdapter implements ListingEventsPort over RabbitMQ.
type ListingEventsAdapter struct {
	producer   messagePublisher
	routingKey string
}

func NewListingEventsAdapter(producer messagePublisher) (*ListingEventsAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &ListingEventsAdapter{
		producer:   producer,
		routingKey: constants.RoutingKeyScrapedListing,
	}, nil
}

func (a *ListingEventsAdapter) PublishScraped(ctx context.Context, listing domain.Listing, imagePaths []string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "ListingEventsAdapter",
		"routing_key": a.routingKey,
		"listing_id":  listing.ID,
	})

	eventDTO := ScrapedListingEventDTO{
		ID:           listing.ID,
		URL:          listing.URL,
		Portal:       listing.Portal,
		Description:  listing.Description,
		Location:     listing.Location,
		Geohash:      listing.Geohash,
		PropertyType: listing.PropertyType,
		Operation:    listing.Operation,
		Price:        listing.Price,
		Images:       listing.Images,
		ImagePaths:   imagePaths,
		ScrapedAt:    time.Now().UTC(),
	}

	eventJSON, err := json.Marshal(eventDTO)
	if err != nil {
		adapterLogger.Error("Failed to marshal scraped-listing event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to marshal event for %s: %w", listing.URL, err)
	}

	if err := contracts.ValidateEvent(constants.ScrapedListingEventType, constants.ScrapedListingEventVersion, eventJSON); err != nil {
		adapterLogger.Error("Scraped-listing event failed schema validation", err, nil)
		return fmt.Errorf("rabbitmq adapter: event contract violation for %s: %w", listing.URL, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         eventJSON,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"event-type":    constants.ScrapedListingEventType,
			"event-version": constants.ScrapedListingEventVersion,
		},
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish scraped-listing event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish event for %s: %w", listing.URL, err)
	}

	adapterLogger.Info("Published scraped-listing event", nil)
	return nil
}
