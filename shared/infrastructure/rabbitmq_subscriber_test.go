package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/draftea/order-system/shared/events"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	deliveries chan amqp.Delivery
	declared   string
	prefetch   int
	closed     bool
	consumeErr error
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	c.declared = name
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) Qos(prefetchCount, prefetchSize int, global bool) error {
	c.prefetch = prefetchCount
	return nil
}

func (c *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	if c.consumeErr != nil {
		return nil, c.consumeErr
	}
	return c.deliveries, nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

// fakeAcknowledger records the settlement of each delivery tag
type fakeAcknowledger struct {
	mu      sync.Mutex
	results map[uint64]string
	settled chan struct{}
}

func (a *fakeAcknowledger) record(tag uint64, result string) error {
	a.mu.Lock()
	a.results[tag] = result
	a.mu.Unlock()
	a.settled <- struct{}{}
	return nil
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	return a.record(tag, "ack")
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	if requeue {
		return a.record(tag, "requeue")
	}
	return a.record(tag, "nack")
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.record(tag, "reject")
}

type failingHandler struct {
	mu       sync.Mutex
	received []*events.Event
}

func (h *failingHandler) Handle(ctx context.Context, event *events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, event)

	var payload struct {
		OrderID string `json:"order_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		return err
	}
	if payload.OrderID == "fail" {
		return errors.New("database unavailable")
	}
	return nil
}

func TestRabbitMQSubscriber_Subscribe(t *testing.T) {
	acker := &fakeAcknowledger{results: make(map[uint64]string), settled: make(chan struct{}, 4)}
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery, 4)}

	ch.deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, CorrelationId: "corr-1", Body: []byte(`{"order_id":"order-1"}`)}
	ch.deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 2, Body: []byte(`{"order_id":"fail"}`)}
	ch.deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 3, Redelivered: true, Body: []byte(`{"order_id":"fail"}`)}
	ch.deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 4, Body: []byte(`garbage`)}

	handler := &failingHandler{}
	subscriber := NewRabbitMQSubscriber(ch, RabbitMQConfig{
		Queue:            "orders",
		Durable:          true,
		Workers:          2,
		DefaultEventType: events.OrderReceivedEvent,
	}, zap.NewNop())

	errCh := make(chan error, 1)
	go func() { errCh <- subscriber.Subscribe(context.Background(), handler) }()

	for i := 0; i < 4; i++ {
		select {
		case <-acker.settled:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 4 deliveries settled", i)
		}
	}

	require.NoError(t, subscriber.Close())
	require.NoError(t, <-errCh)

	assert.Equal(t, map[uint64]string{1: "ack", 2: "requeue", 3: "nack", 4: "reject"}, acker.results)
	assert.Equal(t, "orders", ch.declared)
	assert.Equal(t, 2, ch.prefetch)
	assert.True(t, ch.closed)

	require.Len(t, handler.received, 3)
	for _, event := range handler.received {
		assert.Equal(t, events.OrderReceivedEvent, event.EventType)
		if event.Metadata[AMQPDeliveryTagKey] == "1" {
			assert.Equal(t, "corr-1", event.CorrelationID.String())
		}
	}
}

func TestRabbitMQSubscriber_ConsumeError(t *testing.T) {
	ch := &fakeChannel{consumeErr: errors.New("channel closed")}
	subscriber := NewRabbitMQSubscriber(ch, RabbitMQConfig{Queue: "orders"}, zap.NewNop())

	err := subscriber.Subscribe(context.Background(), &failingHandler{})
	assert.ErrorContains(t, err, "could not start consume")
}
