package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

var (
	ErrPublishNacked   = errors.New("order event nacked by broker")
	ErrPublishTimeout  = errors.New("order event confirmation timeout")
	ErrPublisherClosed = errors.New("order event publisher closed")
)

// OrderPlacedEvent is emitted once per checkout submission
type OrderPlacedEvent struct {
	EventID       uuid.UUID          `json:"eventId"`
	OrderNumber   string             `json:"orderNumber"`
	Status        domain.OrderStatus `json:"status"`
	Fulfillment   string             `json:"fulfillment"`
	CustomerEmail string             `json:"customerEmail"`
	ProductID     *uuid.UUID         `json:"productId,omitempty"`
	Quantity      int                `json:"quantity"`
	Total         decimal.Decimal    `json:"total"`
	Timestamp     time.Time          `json:"timestamp"`
}

// RoutingKey is order.<status>, so consumers can bind to order.* or a single outcome
func (e OrderPlacedEvent) RoutingKey() string {
	return "order." + string(e.Status)
}

// Publisher emits order events
type Publisher interface {
	Publish(ctx context.Context, event OrderPlacedEvent) error
	Close() error
}

// NoopPublisher is used when RabbitMQ is disabled
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, OrderPlacedEvent) error { return nil }
func (NoopPublisher) Close() error { return nil }

// channel is the part of *amqp.Channel the publisher uses
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes to a durable topic exchange on a confirm-mode
// channel. Publishes are serialized and each one waits for the confirmation
// carrying its own delivery tag; late confirmations of earlier messages that
// timed out are discarded.
type RabbitMQPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	confirms chan amqp.Confirmation
	exchange string
	timeout  time.Duration
	logger   *zap.Logger
	closed   bool
	// tag of the last successful publish; the broker numbers from 1
	lastTag uint64
}

// NewRabbitMQPublisher dials the broker, enables publisher confirms and
// declares the exchange.
func NewRabbitMQPublisher(cfg config.RabbitMQConfig, logger *zap.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("channel could not be put into confirm mode: %w", err)
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 16))

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	logger.Info("RabbitMQ order event publisher ready", zap.String("exchange", cfg.Exchange))

	p := newPublisher(ch, confirms, cfg.Exchange, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, confirms chan amqp.Confirmation, exchange string, logger *zap.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		ch:       ch,
		confirms: confirms,
		exchange: exchange,
		timeout:  publishTimeout,
		logger:   logger,
	}
}

// Publish sends the event as persistent JSON and waits for the broker ack
func (p *RabbitMQPublisher) Publish(ctx context.Context, event OrderPlacedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}

	err = p.ch.Publish(
		p.exchange,
		event.RoutingKey(),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID.String(),
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	p.lastTag++
	tag := p.lastTag

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	for {
		select {
		case confirm, ok := <-p.confirms:
			if !ok {
				return ErrPublisherClosed
			}
			if confirm.DeliveryTag < tag {
				p.logger.Debug("Discarding late order event confirmation",
					zap.Uint64("delivery_tag", confirm.DeliveryTag),
					zap.Uint64("expected_tag", tag),
				)
				continue
			}
			if !confirm.Ack {
				return ErrPublishNacked
			}
			p.logger.Debug("Order event confirmed",
				zap.String("order_number", event.OrderNumber),
				zap.Uint64("delivery_tag", confirm.DeliveryTag),
			)
			return nil
		case <-timer.C:
			return ErrPublishTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.ch.Close(); err != nil {
		p.logger.Error("Error closing RabbitMQ channel", zap.Error(err))
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close RabbitMQ connection: %w", err)
		}
	}
	return nil
}

// NewPublisher returns a RabbitMQ publisher when enabled and a no-op otherwise
func NewPublisher(cfg config.RabbitMQConfig, logger *zap.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return NoopPublisher{}, nil
	}
	return NewRabbitMQPublisher(cfg, logger)
}
