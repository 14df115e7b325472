package infrastructure

import (
	"encoding/json"
	"testing"

	"github.com/draftea/order-system/shared/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage(t *testing.T) {
	envelope := `{"id":"e-1","aggregate_id":"order-1","event_type":"payment.outcome.received","version":"1.0","data":{"payment_id":"pay-1","status":"COMPLETED"},"timestamp":"2024-01-01T00:00:00Z"}`
	notification, err := json.Marshal(map[string]string{"Type": "Notification", "MessageId": "m-1", "Message": envelope})
	require.NoError(t, err)

	tests := []struct {
		name          string
		body          string
		defaultType   string
		expectedType  string
		expectedData  string
		expectedError string
	}{
		{
			name:         "event envelope",
			body:         envelope,
			defaultType:  events.OrderReceivedEvent,
			expectedType: events.PaymentOutcomeReceivedEvent,
			expectedData: `{"payment_id":"pay-1","status":"COMPLETED"}`,
		},
		{
			name:         "sns notification",
			body:         string(notification),
			defaultType:  events.OrderReceivedEvent,
			expectedType: events.PaymentOutcomeReceivedEvent,
			expectedData: `{"payment_id":"pay-1","status":"COMPLETED"}`,
		},
		{
			name:         "raw intake body",
			body:         `{"order_id":"order-1","customer_id":"c-1","card_number":"4111","items":[{"sku":"A","quantity":1}]}`,
			defaultType:  events.OrderReceivedEvent,
			expectedType: events.OrderReceivedEvent,
			expectedData: `{"order_id":"order-1","customer_id":"c-1","card_number":"4111","items":[{"sku":"A","quantity":1}]}`,
		},
		{
			name:          "raw body without default type",
			body:          `{"order_id":"order-1"}`,
			expectedError: "not an event envelope",
		},
		{
			name:          "not json",
			body:          `order-1`,
			defaultType:   events.OrderReceivedEvent,
			expectedError: "not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := decodeMessage([]byte(tt.body), tt.defaultType)

			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedType, event.EventType)
			assert.Equal(t, events.Topic(tt.expectedType), event.Topic)
			assert.NotNil(t, event.Metadata)

			raw, err := event.MarshalPayload()
			require.NoError(t, err)
			assert.JSONEq(t, tt.expectedData, string(raw))
		})
	}
}
