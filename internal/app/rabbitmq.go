package app

import (
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"boleia/internal/config"
)

const (
	amqpDialAttempts = 5
	amqpDialBackoff  = 2 * time.Second
)

// NewAMQPChannel dials RabbitMQ and opens a channel, retrying while the
// broker is still coming up. The returned connection must be closed by
// the caller on shutdown.
func NewAMQPChannel(cfg config.AMQPConfig) (*amqp091.Connection, *amqp091.Channel, error) {
	var conn *amqp091.Connection
	var err error

	for attempt := 1; attempt <= amqpDialAttempts; attempt++ {
		conn, err = amqp091.Dial(cfg.URL)
		if err == nil {
			break
		}
		log.Printf("amqp: dial attempt %d/%d failed: %v", attempt, amqpDialAttempts, err)
		time.Sleep(amqpDialBackoff)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}

	return conn, ch, nil
}
