package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"property-scraper-service/internal/constants"
	"property-scraper-service/internal/core/domain"
)

type recordingPublisher struct {
	routingKey string
	msg        amqp.Publishing
	err        error
	calls      int
}

func (r *recordingPublisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	r.calls++
	r.routingKey = routingKey
	r.msg = msg
	return r.err
}

func validListing() domain.Listing {
	return domain.Listing{
		ID:     "a1b2c3d4e5f60718",
		URL:    "https://century21mexico.com/propiedad/123",
		Portal: constants.PortalCentury21,
		Price:  domain.Price{MXN: "$ 2,450,000 MXN"},
	}
}

func TestPublishScraped(t *testing.T) {
	producer := &recordingPublisher{}
	adapter, err := NewListingEventsAdapter(producer)
	if err != nil {
		t.Fatalf("NewListingEventsAdapter: %v", err)
	}

	if err := adapter.PublishScraped(context.Background(), validListing(), []string{"properties/a_0.jpg"}); err != nil {
		t.Fatalf("PublishScraped: %v", err)
	}

	if producer.routingKey != constants.RoutingKeyScrapedListing {
		t.Errorf("routing key: got %q", producer.routingKey)
	}
	if producer.msg.DeliveryMode != amqp.Persistent {
		t.Error("event must be published persistent")
	}
	if producer.msg.Headers["event-type"] != constants.ScrapedListingEventType {
		t.Errorf("event-type header: got %v", producer.msg.Headers["event-type"])
	}

	var dto ScrapedListingEventDTO
	if err := json.Unmarshal(producer.msg.Body, &dto); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if dto.URL != "https://century21mexico.com/propiedad/123" {
		t.Errorf("event url: got %q", dto.URL)
	}
	if len(dto.ImagePaths) != 1 {
		t.Errorf("image paths: got %v", dto.ImagePaths)
	}
	if dto.ScrapedAt.IsZero() {
		t.Error("scraped_at must be set")
	}
}

func TestPublishScrapedRejectsContractViolation(t *testing.T) {
	producer := &recordingPublisher{}
	adapter, _ := NewListingEventsAdapter(producer)

	// Missing the required portal field.
	listing := validListing()
	listing.Portal = ""

	if err := adapter.PublishScraped(context.Background(), listing, nil); err == nil {
		t.Fatal("expected contract violation error")
	}
	if producer.calls != 0 {
		t.Error("invalid event must never reach the broker")
	}
}

func TestPublishScrapedPropagatesBrokerError(t *testing.T) {
	producer := &recordingPublisher{err: errors.New("channel closed")}
	adapter, _ := NewListingEventsAdapter(producer)

	if err := adapter.PublishScraped(context.Background(), validListing(), nil); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestNewListingEventsAdapterNilProducer(t *testing.T) {
	if _, err := NewListingEventsAdapter(nil); err == nil {
		t.Error("nil producer must be rejected")
	}
}
