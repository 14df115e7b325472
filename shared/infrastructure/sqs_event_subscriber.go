package infrastructure

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var _ events.Subscriber = (*SQSEventSubscriber)(nil)

const (
	SQSMessageIDKey     = "sqs_message_id"
	SQSReceiptHandleKey = "sqs_receipt_handle"
)

// sqsAPI is the subset of the SQS client used by the subscriber
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
}

type sqsMessage struct {
	Message types.Message
	Event   *events.Event
	Err     error
}

// SQSEventSubscriber delivers SQS messages to a handler through a pool of
// readers, workers and cleaners. Messages are deleted once handled and have
// their visibility extended when the handler fails.
type SQSEventSubscriber struct {
	mux     sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool
	options *sqsSubscriberOptions

	client   sqsAPI
	queueURL string
	logger   *zap.Logger
}

type sqsSubscriberOptions struct {
	workers                        int
	readers                        int
	cleaners                       int
	maxNumberOfMessages            int32
	waitTimeSeconds                int32
	visibilityTimeout              int32
	sleepTimeAfterEmptyReceive     time.Duration
	sleepTimeAfterError            time.Duration
	extendVisibilityTimeoutOnError bool
	receiveCountRange              int32
	visibilityTimeoutOffset        int32
	maxVisibilityTimeout           int32
	defaultEventType               string
}

type SQSSubscriberOption func(*sqsSubscriberOptions)

func WithWorkers(workers int) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		if workers > 0 {
			o.workers = workers
		}
	}
}

func WithReaders(readers int) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		if readers > 0 {
			o.readers = readers
		}
	}
}

func WithVisibilityTimeout(timeout int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.visibilityTimeout = timeout
	}
}

// WithWaitTime sets the long polling wait and the pause after an empty or failed receive
func WithWaitTime(waitTimeSeconds int32, sleepAfterEmpty, sleepAfterError time.Duration) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.waitTimeSeconds = waitTimeSeconds
		o.sleepTimeAfterEmptyReceive = sleepAfterEmpty
		o.sleepTimeAfterError = sleepAfterError
	}
}

// WithDefaultEventType wraps bodies that are not event envelopes as events of eventType
func WithDefaultEventType(eventType string) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.defaultEventType = eventType
	}
}

// NewSQSEventSubscriber creates a new SQS event subscriber
func NewSQSEventSubscriber(client sqsAPI, queueURL string, logger *zap.Logger, opts ...SQSSubscriberOption) *SQSEventSubscriber {
	options := &sqsSubscriberOptions{
		workers:                        10,
		readers:                        1,
		cleaners:                       2,
		maxNumberOfMessages:            5,
		waitTimeSeconds:                15,
		visibilityTimeout:              30,
		sleepTimeAfterEmptyReceive:     time.Second,
		sleepTimeAfterError:            5 * time.Second,
		extendVisibilityTimeoutOnError: true,
		receiveCountRange:              3,
		visibilityTimeoutOffset:        30,
		maxVisibilityTimeout:           900,
	}

	for _, opt := range opts {
		opt(options)
	}

	return &SQSEventSubscriber{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
		options:  options,
	}
}

// Subscribe delivers messages to handler until ctx is done or Close is called
func (s *SQSEventSubscriber) Subscribe(ctx context.Context, handler events.EventHandler) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("subscriber is already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mux.Lock()
	s.cancel = cancel
	s.done = done
	s.mux.Unlock()

	defer func() {
		cancel()
		s.running.Store(false)
		close(done)
	}()

	inbound := make(chan *sqsMessage, s.options.workers)
	outbound := make(chan *sqsMessage, s.options.workers)

	var readers, workers, cleaners sync.WaitGroup

	for i := 0; i < s.options.readers; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			s.startReader(ctx, inbound)
		}()
	}

	for i := 0; i < s.options.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			s.startWorker(ctx, handler, inbound, outbound)
		}()
	}

	for i := 0; i < s.options.cleaners; i++ {
		cleaners.Add(1)
		go func() {
			defer cleaners.Done()
			s.startCleaner(outbound)
		}()
	}

	s.logger.Info("SQS subscriber started",
		zap.String("queue_url", s.queueURL),
		zap.Int("workers", s.options.workers),
	)

	// drain in order so every handled message is acknowledged before returning
	readers.Wait()
	close(inbound)
	workers.Wait()
	close(outbound)
	cleaners.Wait()

	s.logger.Info("SQS subscriber stopped", zap.String("queue_url", s.queueURL))
	return nil
}

// Close stops the subscriber and waits for in-flight messages
func (s *SQSEventSubscriber) Close() error {
	s.mux.Lock()
	cancel, done := s.cancel, s.done
	s.mux.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	<-done
	return nil
}

func (s *SQSEventSubscriber) startReader(ctx context.Context, inbound chan<- *sqsMessage) {
	for {
		if ctx.Err() != nil {
			return
		}

		received, err := s.read(ctx, inbound)
		switch {
		case err != nil && ctx.Err() == nil:
			s.logger.Error("failed to read from SQS", zap.Error(err))
			sleep(ctx, s.options.sleepTimeAfterError)
		case err == nil && received == 0:
			sleep(ctx, s.options.sleepTimeAfterEmptyReceive)
		}
	}
}

func (s *SQSEventSubscriber) startWorker(ctx context.Context, handler events.EventHandler, inbound <-chan *sqsMessage, outbound chan<- *sqsMessage) {
	// messages already received are finished even while shutting down
	ctx = context.WithoutCancel(ctx)
	for message := range inbound {
		s.handle(ctx, handler, message)
		outbound <- message
	}
}

func (s *SQSEventSubscriber) startCleaner(outbound <-chan *sqsMessage) {
	for message := range outbound {
		// acknowledgements outlive the subscription context
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.clean(ctx, message); err != nil {
			s.logger.Error("failed to settle SQS message",
				zap.String("message_id", aws.ToString(message.Message.MessageId)),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (s *SQSEventSubscriber) read(ctx context.Context, inbound chan<- *sqsMessage) (int, error) {
	output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: s.options.maxNumberOfMessages,
		WaitTimeSeconds:     s.options.waitTimeSeconds,
		VisibilityTimeout:   s.options.visibilityTimeout,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to receive message from SQS")
	}

	for _, message := range output.Messages {
		event, err := decodeMessage([]byte(aws.ToString(message.Body)), s.options.defaultEventType)
		if err != nil {
			s.logger.Warn("discarding malformed SQS message",
				zap.String("message_id", aws.ToString(message.MessageId)),
				zap.Error(err),
			)
			// a malformed message never becomes valid, so acknowledge it
			inbound <- &sqsMessage{Message: message}
			continue
		}

		event.Metadata.Set(SQSMessageIDKey, aws.ToString(message.MessageId))
		if message.ReceiptHandle != nil {
			event.Metadata.Set(SQSReceiptHandleKey, *message.ReceiptHandle)
		}
		for k, v := range message.MessageAttributes {
			if v.StringValue != nil {
				event.Metadata.Set(k, *v.StringValue)
			}
		}

		inbound <- &sqsMessage{Message: message, Event: event}
	}

	return len(output.Messages), nil
}

func (s *SQSEventSubscriber) handle(ctx context.Context, handler events.EventHandler, message *sqsMessage) {
	if message.Event == nil {
		return
	}

	ctx, span := telemetry.StartSpan(ctx, "sqs_handle_message")
	defer span.End()

	telemetry.RecordUpDown(ctx, "intake_messages_in_flight", "Intake messages being handled", 1)
	defer telemetry.RecordUpDown(ctx, "intake_messages_in_flight", "Intake messages being handled", -1)

	message.Err = handler.Handle(ctx, message.Event)

	telemetry.RecordCounter(ctx, "intake_messages_total", "Total intake messages handled", 1,
		attribute.String("transport", "sqs"),
		attribute.String("event_type", message.Event.EventType),
		attribute.Bool("success", message.Err == nil),
	)

	if message.Err != nil {
		s.logger.Error("failed to handle SQS message",
			zap.String("message_id", aws.ToString(message.Message.MessageId)),
			zap.String("event_type", message.Event.EventType),
			zap.Error(message.Err),
		)
	}
}

func (s *SQSEventSubscriber) clean(ctx context.Context, message *sqsMessage) error {
	if message.Err != nil {
		if !s.options.extendVisibilityTimeoutOnError {
			return nil
		}

		_, err := s.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
			QueueUrl:          aws.String(s.queueURL),
			ReceiptHandle:     message.Message.ReceiptHandle,
			VisibilityTimeout: s.backoffVisibility(message.Message),
		})
		return errors.Wrap(err, "failed to extend visibility timeout")
	}

	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: message.Message.ReceiptHandle,
	})
	return errors.Wrap(err, "failed to delete message from SQS")
}

// backoffVisibility grows the visibility timeout with the receive count
func (s *SQSEventSubscriber) backoffVisibility(message types.Message) int32 {
	receiveCount, err := strconv.Atoi(message.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)])
	if err != nil {
		receiveCount = 1
	}

	timeout := s.options.visibilityTimeout + (int32(receiveCount)/s.options.receiveCountRange)*s.options.visibilityTimeoutOffset
	if timeout > s.options.maxVisibilityTimeout {
		timeout = s.options.maxVisibilityTimeout
	}
	return timeout
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
