package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"geoplaces-api/internal/models"

	"github.com/nats-io/nats.go"
)

const (
	// StreamName is the JetStream stream holding place change events.
	StreamName = "PLACES"
	// SubjectPrefix prefixes every place event subject, e.g. places.created.
	SubjectPrefix = "places."
)

// Publisher announces place changes on NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and makes sure the place stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("geoplaces-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("events: nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: jetstream: %w", err)
	}

	cfg := StreamConfig()
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist with older settings
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("events: ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// StreamConfig describes the place event stream.
func StreamConfig() nats.StreamConfig {
	return nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
}

// Subject returns the subject an event of the given type is published on.
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// PublishPlaceEvent publishes event as JSON on places.<type>.
func (p *Publisher) PublishPlaceEvent(ctx context.Context, event models.PlaceEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	if _, err := p.js.Publish(Subject(event.Type), data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("events: publish %s: %w", event.Type, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
