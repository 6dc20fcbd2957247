package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type publishedMessage struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

// fakeChannel records publishes and answers each one on the confirm channel
type fakeChannel struct {
	published  []publishedMessage
	confirms   chan amqp.Confirmation
	ack        bool
	noConfirm  bool
	publishErr error
	closed     bool
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, publishedMessage{exchange: exchange, key: key, msg: msg})
	if !f.noConfirm {
		f.confirms <- amqp.Confirmation{DeliveryTag: uint64(len(f.published)), Ack: f.ack}
	}
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func newFakePublisher(ack bool) (*RabbitMQPublisher, *fakeChannel) {
	confirms := make(chan amqp.Confirmation, 4)
	ch := &fakeChannel{confirms: confirms, ack: ack}
	return newPublisher(ch, confirms, "storefront.orders", zap.NewNop()), ch
}

func sampleEvent(status domain.OrderStatus) OrderPlacedEvent {
	return OrderPlacedEvent{
		EventID:       uuid.New(),
		OrderNumber:   "ORD-1700000000000-1",
		Status:        status,
		Fulfillment:   "recorded",
		CustomerEmail: "jane@example.com",
		Quantity:      2,
		Total:         decimal.RequireFromString("159.98"),
		Timestamp:     time.Now().UTC(),
	}
}

func TestRabbitMQPublisher_PublishesConfirmedJSON(t *testing.T) {
	p, ch := newFakePublisher(true)

	event := sampleEvent(domain.OrderStatusApproved)
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, ch.published, 1)
	sent := ch.published[0]
	assert.Equal(t, "storefront.orders", sent.exchange)
	assert.Equal(t, "order.approved", sent.key)
	assert.Equal(t, "application/json", sent.msg.ContentType)
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)
	assert.Equal(t, event.EventID.String(), sent.msg.MessageId)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(sent.msg.Body, &decoded))
	assert.Equal(t, "ORD-1700000000000-1", decoded["orderNumber"])
	assert.Equal(t, 159.98, decoded["total"])
	assert.NotContains(t, decoded, "productId")
}

func TestRabbitMQPublisher_NackIsAnError(t *testing.T) {
	p, _ := newFakePublisher(false)
	err := p.Publish(context.Background(), sampleEvent(domain.OrderStatusDeclined))
	assert.ErrorIs(t, err, ErrPublishNacked)
}

func TestRabbitMQPublisher_ConfirmTimeout(t *testing.T) {
	p, ch := newFakePublisher(true)
	ch.noConfirm = true
	p.timeout = 10 * time.Millisecond

	err := p.Publish(context.Background(), sampleEvent(domain.OrderStatusFailed))
	assert.ErrorIs(t, err, ErrPublishTimeout)
}

func TestRabbitMQPublisher_LateConfirmationIsNotCreditedToNextMessage(t *testing.T) {
	p, ch := newFakePublisher(false)
	ch.noConfirm = true
	p.timeout = 10 * time.Millisecond

	err := p.Publish(context.Background(), sampleEvent(domain.OrderStatusApproved))
	require.ErrorIs(t, err, ErrPublishTimeout)

	// the broker acks the first message after the publisher gave up on it
	ch.confirms <- amqp.Confirmation{DeliveryTag: 1, Ack: true}

	// the second message is nacked and must be reported as such
	ch.noConfirm = false
	p.timeout = time.Second
	err = p.Publish(context.Background(), sampleEvent(domain.OrderStatusApproved))
	assert.ErrorIs(t, err, ErrPublishNacked)

	// and a third, acked message is not judged by a stale nack
	ch.ack = true
	assert.NoError(t, p.Publish(context.Background(), sampleEvent(domain.OrderStatusApproved)))
}

func TestRabbitMQPublisher_PublishError(t *testing.T) {
	p, ch := newFakePublisher(true)
	ch.publishErr = errors.New("channel closed")

	err := p.Publish(context.Background(), sampleEvent(domain.OrderStatusApproved))
	assert.Error(t, err)
}

func TestRabbitMQPublisher_ClosedRejectsPublish(t *testing.T) {
	p, ch := newFakePublisher(true)
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
	assert.NoError(t, p.Close())

	err := p.Publish(context.Background(), sampleEvent(domain.OrderStatusApproved))
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

func TestNewPublisher_DisabledIsNoop(t *testing.T) {
	p, err := NewPublisher(config.RabbitMQConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), sampleEvent(domain.OrderStatusApproved)))
}
