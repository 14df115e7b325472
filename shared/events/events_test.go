package events

import (
	"encoding/json"
	"testing"

	"github.com/draftea/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic_Matches(t *testing.T) {
	tests := []struct {
		topic    Topic
		pattern  Topic
		expected bool
	}{
		{"order.created", "order.created", true},
		{"order.created", "order.*", true},
		{"order.payment.initiated", "order.*", false},
		{"order.payment.initiated", "order.#", true},
		{"payment.outcome.received", "#.received", true},
		{"order.received", "#", true},
		{"order.closed", "payment.*", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.topic)+" "+string(tt.pattern), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.topic.Matches(tt.pattern))
		})
	}
}

func TestNewTopic(t *testing.T) {
	_, err := NewTopic("")
	assert.ErrorIs(t, err, ErrInvalidTopic)

	topic, err := NewTopic(OrderClosedEvent)
	require.NoError(t, err)
	assert.Equal(t, OrderClosedEvent, topic.String())
}

func TestFromJSON_Defaults(t *testing.T) {
	event, err := FromJSON([]byte(`{"id":"e-1","event_type":"order.received","data":{"order_id":"order-1"}}`))
	require.NoError(t, err)

	assert.Equal(t, Topic(OrderReceivedEvent), event.Topic)
	assert.NotNil(t, event.Metadata)

	event, err = FromJSON([]byte(`{"id":"e-2","topic":"order.closed"}`))
	require.NoError(t, err)
	assert.Equal(t, OrderClosedEvent, event.EventType)

	_, err = FromJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestEvent_UnmarshalPayload(t *testing.T) {
	type outcome struct {
		PaymentID string `json:"payment_id"`
		Status    string `json:"status"`
	}

	t.Run("same type is assigned", func(t *testing.T) {
		event := NewEvent(models.ID("order-1"), PaymentOutcomeReceivedEvent, outcome{PaymentID: "pay-1", Status: "FAILED"})

		var got outcome
		require.NoError(t, event.UnmarshalPayload(&got))
		assert.Equal(t, "pay-1", got.PaymentID)
	})

	t.Run("raw json is decoded", func(t *testing.T) {
		event := NewEvent(models.ID("order-1"), PaymentOutcomeReceivedEvent, json.RawMessage(`{"payment_id":"pay-2","status":"COMPLETED"}`))

		var got outcome
		require.NoError(t, event.UnmarshalPayload(&got))
		assert.Equal(t, outcome{PaymentID: "pay-2", Status: "COMPLETED"}, got)
	})

	t.Run("receiver must be a pointer", func(t *testing.T) {
		event := NewEvent(models.ID("order-1"), PaymentOutcomeReceivedEvent, nil)
		assert.ErrorIs(t, event.UnmarshalPayload(outcome{}), ErrInvalidReceiver)
	})
}

func TestEvent_Builders(t *testing.T) {
	event := NewEvent(models.ID("order-1"), OrderCreatedEvent, nil).
		WithCorrelationID(models.ID("corr-1")).
		WithMetadata("source", "saga")

	assert.Equal(t, "1.0", event.Version)
	assert.Equal(t, models.ID("corr-1"), event.CorrelationID)

	clone := event.Metadata.Clone()
	clone.Set("source", "other")
	value, ok := event.Metadata.Get("source")
	assert.True(t, ok)
	assert.Equal(t, "saga", value)
}
