package handlers

import (
	"context"

	"github.com/draftea/order-system/orders-service/application"
	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/events"
	"go.uber.org/zap"
)

// OrderEventHandlers handles intake events for the orders service
type OrderEventHandlers struct {
	processOrder          *application.ProcessOrder
	processPaymentOutcome *application.ProcessPaymentOutcome
	logger                *zap.Logger
}

// NewOrderEventHandlers creates new order event handlers
func NewOrderEventHandlers(
	processOrder *application.ProcessOrder,
	processPaymentOutcome *application.ProcessPaymentOutcome,
	logger *zap.Logger,
) *OrderEventHandlers {
	return &OrderEventHandlers{
		processOrder:          processOrder,
		processPaymentOutcome: processPaymentOutcome,
		logger:                logger,
	}
}

// Handle implements the events.EventHandler interface. Business failures are
// acknowledged; only infrastructure failures are returned for redelivery.
func (h *OrderEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.OrderReceivedEvent:
		return h.HandleOrderReceived(ctx, event)
	case events.PaymentOutcomeReceivedEvent:
		return h.HandlePaymentOutcome(ctx, event)
	default:
		h.logger.Debug("ignoring event", zap.String("event_type", event.EventType))
		return nil
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *OrderEventHandlers) HandlerID() string {
	return "orders-service-event-handler"
}

// HandleOrderReceived runs the order saga for an intake message
func (h *OrderEventHandlers) HandleOrderReceived(ctx context.Context, event *events.Event) error {
	var cmd application.CreateOrderCommand
	if err := event.UnmarshalPayload(&cmd); err != nil {
		h.logger.Warn("discarding malformed order message",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	order, err := h.processOrder.Execute(ctx, &cmd)
	if err != nil {
		return h.settle(err, zap.String("order_id", cmd.OrderID))
	}

	h.logger.Debug("order message handled",
		zap.String("order_id", order.ID.String()),
		zap.String("status", order.Status.String()),
	)
	return nil
}

// HandlePaymentOutcome applies a payment outcome delivered as an event
func (h *OrderEventHandlers) HandlePaymentOutcome(ctx context.Context, event *events.Event) error {
	var cmd application.ProcessPaymentOutcomeCommand
	if err := event.UnmarshalPayload(&cmd); err != nil {
		h.logger.Warn("discarding malformed payment outcome",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	if _, err := h.processPaymentOutcome.Execute(ctx, &cmd); err != nil {
		return h.settle(err, zap.String("payment_id", cmd.PaymentID))
	}
	return nil
}

func (h *OrderEventHandlers) settle(err error, field zap.Field) error {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindDuplicate, domain.KindNotFound, domain.KindStatusConflict:
		h.logger.Warn("message rejected", field, zap.Error(err))
		return nil
	default:
		h.logger.Error("message failed", field, zap.Error(err))
		return err
	}
}
