// Package notify publishes run completion events to an AMQP exchange so other
// services can follow distribution runs.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"statement-distributor/pkg/logger"
)

//go:generate mockgen -destination=mocks/mock_publisher.go -package=mock_notify statement-distributor/internal/notify Publisher

// Publisher delivers run completion events
type Publisher interface {
	PublishRunCompleted(ctx context.Context, msg *RunCompletedMessage) error
	Close() error
}

// Config holds the broker settings
type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// Client publishes to a durable direct exchange.
type Client struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
	logger     logger.Logger
}

// NewClient dials the broker and declares the exchange
func NewClient(config Config, log logger.Logger) (*Client, error) {
	conn, err := amqp091.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:       conn,
		channel:    channel,
		exchange:   config.Exchange,
		routingKey: config.RoutingKey,
		logger:     log.WithComponent("notify"),
	}

	err = channel.ExchangeDeclare(
		config.Exchange, // name
		"direct",        // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return client, nil
}

// PublishRunCompleted publishes msg as a persistent JSON message
func (c *Client) PublishRunCompleted(ctx context.Context, msg *RunCompletedMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchange,   // exchange
		c.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msg.RunID,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.WithFields(logger.Fields{
		"run_id":   msg.RunID,
		"exchange": c.exchange,
		"key":      c.routingKey,
	}).Info("Published run completed message")

	return nil
}

// Close releases the channel and connection
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// NopPublisher discards events. It stands in for the broker when notifications are disabled.
type NopPublisher struct{}

func (NopPublisher) PublishRunCompleted(context.Context, *RunCompletedMessage) error { return nil }

func (NopPublisher) Close() error { return nil }
