package application

import (
	"context"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/events"
	"go.uber.org/zap"
)

// OrderWriter persists an order and then publishes the events it recorded.
// Publishing is best effort: a failed publish is logged and the write stands.
type OrderWriter struct {
	orderRepository domain.OrderRepository
	eventPublisher  events.Publisher
	logger          *zap.Logger
}

// NewOrderWriter creates a new OrderWriter
func NewOrderWriter(orderRepository domain.OrderRepository, eventPublisher events.Publisher, logger *zap.Logger) *OrderWriter {
	return &OrderWriter{
		orderRepository: orderRepository,
		eventPublisher:  eventPublisher,
		logger:          logger,
	}
}

// Save writes the order and publishes its pending events
func (w *OrderWriter) Save(ctx context.Context, order *domain.Order) error {
	if err := w.orderRepository.Save(ctx, order); err != nil {
		return err
	}

	pending := order.Events()
	order.ClearEvents()
	if len(pending) == 0 {
		return nil
	}

	if err := w.eventPublisher.Publish(ctx, pending...); err != nil {
		w.logger.Warn("failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Int("events", len(pending)),
			zap.Error(err),
		)
	}

	return nil
}
