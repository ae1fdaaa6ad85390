package stream

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/rabbitmq/amqp091-go"

	"boleia/internal/domain"
)

// ExchangeName is the topic exchange ride events are published to.
// Routing keys are "ride.<event type>", lowercased, so a fleet dashboard
// can bind "ride.*" and a notification worker "ride.status_changed".
const ExchangeName = "ride.events"

// AMQPPublisher publishes ride events to RabbitMQ for consumers outside
// this process. Publish failures are logged and dropped: the broker is a
// propagation channel, not the system of record.
type AMQPPublisher struct {
	ch *amqp091.Channel
}

// NewAMQPPublisher declares the topic exchange and returns a publisher.
func NewAMQPPublisher(ch *amqp091.Channel) (*AMQPPublisher, error) {
	err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	return &AMQPPublisher{ch: ch}, nil
}

// PublishRideEvent implements Publisher.
func (p *AMQPPublisher) PublishRideEvent(ctx context.Context, event domain.RideEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("amqp: marshal ride event: %v", err)
		return
	}

	routingKey := "ride." + strings.ToLower(string(event.Type))
	err = p.ch.PublishWithContext(ctx, ExchangeName, routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		log.Printf("amqp: publish %s for ride %s: %v", routingKey, event.RideID, err)
	}
}

// Ensure AMQPPublisher implements Publisher.
var _ Publisher = (*AMQPPublisher)(nil)
