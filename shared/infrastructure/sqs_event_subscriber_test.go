package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/draftea/order-system/shared/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSQS serves a fixed set of messages once and records how each was settled
type fakeSQS struct {
	mu       sync.Mutex
	pending  []types.Message
	deleted  []string
	extended map[string]int32
	settled  chan struct{}
}

func newFakeSQS(messages ...types.Message) *fakeSQS {
	return &fakeSQS{
		pending:  messages,
		extended: make(map[string]int32),
		settled:  make(chan struct{}, len(messages)),
	}
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	messages := f.pending
	f.pending = nil
	return &sqs.ReceiveMessageOutput{Messages: messages}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	f.mu.Unlock()
	f.settled <- struct{}{}
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error) {
	f.mu.Lock()
	f.extended[aws.ToString(params.ReceiptHandle)] = params.VisibilityTimeout
	f.mu.Unlock()
	f.settled <- struct{}{}
	return &sqs.ChangeMessageVisibilityOutput{}, nil
}

type recordingHandler struct {
	mu     sync.Mutex
	events []*events.Event
	fail   map[string]bool
}

func (h *recordingHandler) Handle(ctx context.Context, event *events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	if h.fail[event.Metadata[SQSReceiptHandleKey]] {
		return errors.New("database unavailable")
	}
	return nil
}

func sqsMsg(id, body string, receiveCount string) types.Message {
	return types.Message{
		MessageId:     aws.String(id),
		ReceiptHandle: aws.String("rh-" + id),
		Body:          aws.String(body),
		Attributes: map[string]string{
			string(types.MessageSystemAttributeNameApproximateReceiveCount): receiveCount,
		},
		MessageAttributes: map[string]types.MessageAttributeValue{
			"source": {DataType: aws.String("String"), StringValue: aws.String("intake")},
		},
	}
}

func waitSettled(t *testing.T, f *fakeSQS, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.settled:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of %d messages settled", i, n)
		}
	}
}

func TestSQSEventSubscriber_Subscribe(t *testing.T) {
	client := newFakeSQS(
		sqsMsg("1", `{"order_id":"order-1","customer_id":"c-1","card_number":"4111","items":[{"sku":"A","quantity":1}]}`, "1"),
		sqsMsg("2", `{"order_id":"order-2"}`, "6"),
		sqsMsg("3", `not json`, "1"),
	)
	handler := &recordingHandler{fail: map[string]bool{"rh-2": true}}

	subscriber := NewSQSEventSubscriber(client, "queue-url", zap.NewNop(),
		WithWorkers(2),
		WithWaitTime(0, time.Millisecond, time.Millisecond),
		WithDefaultEventType(events.OrderReceivedEvent),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- subscriber.Subscribe(context.Background(), handler) }()

	waitSettled(t, client, 3)
	require.NoError(t, subscriber.Close())
	require.NoError(t, <-errCh)

	assert.ElementsMatch(t, []string{"rh-1", "rh-3"}, client.deleted)
	assert.Equal(t, map[string]int32{"rh-2": 90}, client.extended)

	require.Len(t, handler.events, 2)
	for _, event := range handler.events {
		assert.Equal(t, events.OrderReceivedEvent, event.EventType)
		assert.Equal(t, "intake", event.Metadata["source"])
	}
}

func TestSQSEventSubscriber_AlreadyRunning(t *testing.T) {
	subscriber := NewSQSEventSubscriber(newFakeSQS(), "queue-url", zap.NewNop(),
		WithWaitTime(0, time.Millisecond, time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- subscriber.Subscribe(ctx, &recordingHandler{}) }()

	require.Eventually(t, subscriber.running.Load, time.Second, time.Millisecond)
	assert.ErrorContains(t, subscriber.Subscribe(ctx, &recordingHandler{}), "already running")

	cancel()
	require.NoError(t, <-errCh)
}

func TestSQSEventSubscriber_BackoffVisibility(t *testing.T) {
	subscriber := NewSQSEventSubscriber(newFakeSQS(), "queue-url", zap.NewNop())

	assert.Equal(t, int32(30), subscriber.backoffVisibility(sqsMsg("1", "{}", "1")))
	assert.Equal(t, int32(60), subscriber.backoffVisibility(sqsMsg("1", "{}", "3")))
	assert.Equal(t, int32(30), subscriber.backoffVisibility(sqsMsg("1", "{}", "garbage")))
	assert.Equal(t, int32(900), subscriber.backoffVisibility(sqsMsg("1", "{}", "1000")))
}
