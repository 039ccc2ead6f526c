package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"pointstack/pkg/config"
	"pointstack/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	LoyaltyEventsExchange = "loyalty_events"
	LoyaltyEventsQueue    = "loyalty_events_queue"
)

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// One topic exchange for all ledger events; consumers bind per event type
	err = channel.ExchangeDeclare(
		LoyaltyEventsExchange, // name
		"topic",               // type
		true,                  // durable
		false,                 // auto-deleted
		false,                 // internal
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		LoyaltyEventsQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		LoyaltyEventsQueue,    // queue name
		"#",                   // routing key: all event types
		LoyaltyEventsExchange, // exchange
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishEvent publishes a ledger event with the event type as routing key.
func (c *Client) PublishEvent(eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = c.channel.Publish(
		LoyaltyEventsExchange, // exchange
		eventType,             // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish event type=%s: %v", eventType, err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published event type=%s: %s", eventType, string(body))
	return nil
}

// ConsumeEvents consumes ledger events from the queue. The handler receives
// the event type and raw JSON payload; returning an error requeues the message.
func (c *Client) ConsumeEvents(handler func(eventType string, body []byte) error) error {
	msgs, err := c.channel.Consume(
		LoyaltyEventsQueue, // queue
		"",                 // consumer
		false,              // auto-ack (we'll manually ack after processing)
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from queue: %s", LoyaltyEventsQueue)

	go func() {
		for msg := range msgs {
			if err := handler(msg.Type, msg.Body); err != nil {
				c.logger.Error("[RABBITMQ] Handler failed for event type=%s: %v", msg.Type, err)
				msg.Nack(false, true) // Reject and requeue
				continue
			}
			msg.Ack(false)
		}
	}()

	return nil
}

// GetQueueLength returns the number of messages in the queue
func (c *Client) GetQueueLength() (int, error) {
	queue, err := c.channel.QueueInspect(LoyaltyEventsQueue)
	if err != nil {
		return 0, err
	}
	return queue.Messages, nil
}
