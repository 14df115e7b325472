package infrastructure

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var _ events.Publisher = (*SNSEventPublisher)(nil)

const maxBatchSize = 10

// metadata keys that only make sense for the delivery that carried an event
var transportMetadata = map[string]bool{
	"sqs_message_id":     true,
	"sqs_receipt_handle": true,
	"amqp_delivery_tag":  true,
}

// snsAPI is the subset of the SNS client used by the publisher
type snsAPI interface {
	PublishBatch(ctx context.Context, params *sns.PublishBatchInput, optFns ...func(*sns.Options)) (*sns.PublishBatchOutput, error)
}

// SNSEventPublisher publishes events to an SNS topic as JSON envelopes
type SNSEventPublisher struct {
	client   snsAPI
	topicArn string
	logger   *zap.Logger
}

// NewSNSEventPublisher creates a new SNSEventPublisher
func NewSNSEventPublisher(client snsAPI, topicArn string, logger *zap.Logger) *SNSEventPublisher {
	return &SNSEventPublisher{
		client:   client,
		topicArn: topicArn,
		logger:   logger,
	}
}

// Publish sends events in batches of ten, concurrently
func (p *SNSEventPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	gr, ctx := errgroup.WithContext(ctx)
	for _, batch := range splitToChunks(evts, maxBatchSize) {
		batch := batch
		gr.Go(func() error {
			return p.batchPublish(ctx, batch)
		})
	}

	return gr.Wait()
}

func (p *SNSEventPublisher) batchPublish(ctx context.Context, batch []*events.Event) error {
	entries := make([]types.PublishBatchRequestEntry, len(batch))

	for i, event := range batch {
		body, err := event.ToJSON()
		if err != nil {
			return errors.Wrapf(err, "failed to marshal event %s", event.ID)
		}

		entries[i] = types.PublishBatchRequestEntry{
			Id:                aws.String(event.ID.String()),
			Message:           aws.String(string(body)),
			MessageAttributes: messageAttributes(event),
		}
	}

	res, err := p.client.PublishBatch(ctx, &sns.PublishBatchInput{
		TopicArn:                   aws.String(p.topicArn),
		PublishBatchRequestEntries: entries,
	})
	if err != nil {
		return errors.Wrap(err, "failed to publish batch to SNS")
	}

	for _, event := range batch {
		telemetry.RecordCounter(ctx, "events_published_total", "Total events published", 1,
			attribute.String("event_type", event.EventType),
			attribute.Bool("success", !failedEntry(res.Failed, event.ID.String())),
		)
	}

	if len(res.Failed) == 0 {
		return nil
	}

	ids := make([]string, 0, len(res.Failed))
	for _, entry := range res.Failed {
		p.logger.Error("failed to publish event to SNS",
			zap.String("event_id", aws.ToString(entry.Id)),
			zap.String("code", aws.ToString(entry.Code)),
			zap.String("reason", aws.ToString(entry.Message)),
		)
		ids = append(ids, aws.ToString(entry.Id))
	}
	return fmt.Errorf("SNS rejected %d event(s): %s", len(ids), strings.Join(ids, ", "))
}

func messageAttributes(event *events.Event) map[string]types.MessageAttributeValue {
	attrs := map[string]types.MessageAttributeValue{
		"topic": {
			DataType:    aws.String("String"),
			StringValue: aws.String(event.Topic.String()),
		},
		"event_type": {
			DataType:    aws.String("String"),
			StringValue: aws.String(event.EventType),
		},
	}

	for k, v := range event.Metadata {
		if transportMetadata[k] || v == "" {
			continue
		}
		attrs[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	return attrs
}

func failedEntry(failed []types.BatchResultErrorEntry, id string) bool {
	for _, entry := range failed {
		if aws.ToString(entry.Id) == id {
			return true
		}
	}
	return false
}

// splitToChunks splits slice into chunks of specified size
func splitToChunks[T any](slice []T, chunkSize int) [][]T {
	var chunks [][]T
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}
