package infrastructure

import (
	"encoding/json"

	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// snsNotification is the envelope SNS wraps around messages delivered to SQS
// when raw message delivery is off.
type snsNotification struct {
	Type      string `json:"Type"`
	MessageID string `json:"MessageId"`
	Message   string `json:"Message"`
}

// envelopeProbe detects whether a body is an event envelope
type envelopeProbe struct {
	EventType string          `json:"event_type"`
	Topic     string          `json:"topic"`
	Data      json.RawMessage `json:"data"`
}

// decodeMessage turns a queue message body into an event. It accepts an event
// envelope, an SNS notification carrying one, or a bare payload which is
// wrapped as an event of defaultType.
func decodeMessage(body []byte, defaultType string) (*events.Event, error) {
	if !json.Valid(body) {
		return nil, errors.New("message body is not valid JSON")
	}

	var notification snsNotification
	if err := json.Unmarshal(body, &notification); err == nil && notification.Type == "Notification" && notification.Message != "" {
		return decodeMessage([]byte(notification.Message), defaultType)
	}

	var probe envelopeProbe
	if err := json.Unmarshal(body, &probe); err == nil && (probe.EventType != "" || probe.Topic != "") && probe.Data != nil {
		event, err := events.FromJSON(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode event envelope")
		}
		event.Data = probe.Data
		return event, nil
	}

	if defaultType == "" {
		return nil, errors.New("message is not an event envelope")
	}

	return events.NewEvent(models.ID(""), defaultType, json.RawMessage(body)), nil
}
