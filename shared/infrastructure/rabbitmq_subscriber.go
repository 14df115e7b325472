package infrastructure

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var _ events.Subscriber = (*RabbitMQSubscriber)(nil)

const AMQPDeliveryTagKey = "amqp_delivery_tag"

// amqpChannel is the subset of *amqp.Channel used by the subscriber
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// RabbitMQConfig describes the intake queue
type RabbitMQConfig struct {
	Queue            string
	Durable          bool
	Prefetch         int
	Workers          int
	DefaultEventType string
}

// RabbitMQSubscriber consumes a queue with manual acknowledgements. Handled
// deliveries are acked, failed ones are requeued once and malformed ones are
// rejected.
type RabbitMQSubscriber struct {
	ch     amqpChannel
	config RabbitMQConfig
	logger *zap.Logger

	mux    sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRabbitMQSubscriber creates a subscriber on an open channel
func NewRabbitMQSubscriber(ch amqpChannel, config RabbitMQConfig, logger *zap.Logger) *RabbitMQSubscriber {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Prefetch <= 0 {
		config.Prefetch = config.Workers
	}
	return &RabbitMQSubscriber{ch: ch, config: config, logger: logger}
}

// DialRabbitMQ connects to the broker, retrying while it starts up
func DialRabbitMQ(url string, attempts int, logger *zap.Logger) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error

	for i := 0; i < attempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn("failed to connect to RabbitMQ", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, errors.Wrap(err, "could not open channel")
	}

	return conn, ch, nil
}

// Subscribe consumes deliveries until ctx is done, Close is called or the channel closes
func (s *RabbitMQSubscriber) Subscribe(ctx context.Context, handler events.EventHandler) error {
	s.mux.Lock()
	if s.cancel != nil {
		s.mux.Unlock()
		return errors.New("subscriber is already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mux.Unlock()

	defer func() {
		cancel()
		close(done)
	}()

	if _, err := s.ch.QueueDeclare(s.config.Queue, s.config.Durable, false, false, false, nil); err != nil {
		return errors.Wrap(err, "could not declare queue")
	}

	if err := s.ch.Qos(s.config.Prefetch, 0, false); err != nil {
		return errors.Wrap(err, "could not set prefetch")
	}

	deliveries, err := s.ch.Consume(s.config.Queue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "could not start consume")
	}

	s.logger.Info("RabbitMQ subscriber started",
		zap.String("queue", s.config.Queue),
		zap.Int("workers", s.config.Workers),
	)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.consume(ctx, handler, deliveries)
		}()
	}
	wg.Wait()

	s.logger.Info("RabbitMQ subscriber stopped", zap.String("queue", s.config.Queue))
	return nil
}

// Close stops consuming and closes the channel
func (s *RabbitMQSubscriber) Close() error {
	s.mux.Lock()
	cancel, done := s.cancel, s.done
	s.mux.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	if err := s.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return errors.Wrap(err, "failed to close channel")
	}
	return nil
}

func (s *RabbitMQSubscriber) consume(ctx context.Context, handler events.EventHandler, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			s.handle(context.WithoutCancel(ctx), handler, d)
		}
	}
}

func (s *RabbitMQSubscriber) handle(ctx context.Context, handler events.EventHandler, d amqp.Delivery) {
	event, err := decodeMessage(d.Body, s.config.DefaultEventType)
	if err != nil {
		s.logger.Warn("rejecting malformed RabbitMQ message",
			zap.String("message_id", d.MessageId),
			zap.Error(err),
		)
		s.settle(d.Reject(false), d)
		return
	}

	event.Metadata.Set(AMQPDeliveryTagKey, strconv.FormatUint(d.DeliveryTag, 10))
	if d.CorrelationId != "" && event.CorrelationID.IsZero() {
		event.CorrelationID = models.ID(d.CorrelationId)
	}

	ctx, span := telemetry.StartSpan(ctx, "rabbitmq_handle_message")
	defer span.End()

	err = handler.Handle(ctx, event)

	telemetry.RecordCounter(ctx, "intake_messages_total", "Total intake messages handled", 1,
		attribute.String("transport", "rabbitmq"),
		attribute.String("event_type", event.EventType),
		attribute.Bool("success", err == nil),
	)

	if err != nil {
		s.logger.Error("failed to handle RabbitMQ message",
			zap.String("message_id", d.MessageId),
			zap.String("event_type", event.EventType),
			zap.Bool("redelivered", d.Redelivered),
			zap.Error(err),
		)
		s.settle(d.Nack(false, !d.Redelivered), d)
		return
	}

	s.settle(d.Ack(false), d)
}

func (s *RabbitMQSubscriber) settle(err error, d amqp.Delivery) {
	if err != nil {
		s.logger.Error("failed to settle RabbitMQ message",
			zap.Uint64("delivery_tag", d.DeliveryTag),
			zap.Error(err),
		)
	}
}
