package application

import (
	"context"
	"time"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProcessOrder runs the order saga: validate, create, enrich, deduct stock and
// initiate payment. The first failure picks the compensation and the terminal
// status; saga failures are never returned to the caller.
type ProcessOrder struct {
	validator        *OrderValidator
	enrichOrder      *EnrichOrderDetails
	stockReservation *StockReservation
	initPayment      *InitPayment
	orderWriter      *OrderWriter
	orderLocker      domain.OrderLocker
	logger           *zap.Logger
}

// NewProcessOrder creates a new ProcessOrder use case
func NewProcessOrder(
	validator *OrderValidator,
	enrichOrder *EnrichOrderDetails,
	stockReservation *StockReservation,
	initPayment *InitPayment,
	orderWriter *OrderWriter,
	orderLocker domain.OrderLocker,
	logger *zap.Logger,
) *ProcessOrder {
	return &ProcessOrder{
		validator:        validator,
		enrichOrder:      enrichOrder,
		stockReservation: stockReservation,
		initPayment:      initPayment,
		orderWriter:      orderWriter,
		orderLocker:      orderLocker,
		logger:           logger,
	}
}

// Execute processes an incoming order. An error is returned only when the
// order could not be created; once created, the order is always driven to a
// persisted status and returned.
func (uc *ProcessOrder) Execute(ctx context.Context, cmd *CreateOrderCommand) (*domain.Order, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "process_order")
	defer span.End()

	outcome := "rejected"
	defer func() {
		telemetry.RecordCounter(ctx, "order_saga_outcomes_total", "Total processed orders by outcome", 1,
			attribute.String("status", outcome),
		)
		telemetry.RecordHistogram(ctx, "order_saga_duration_seconds", "Order saga duration", time.Since(start).Seconds(),
			attribute.String("status", outcome),
		)
	}()

	if err := uc.validator.Validate(cmd); err != nil {
		span.RecordError(err)
		uc.logger.Warn("order rejected by validation", zap.Error(err))
		return nil, err
	}

	orderID := models.ID(cmd.OrderID)
	log := uc.logger.With(zap.String("order_id", orderID.String()))
	span.SetAttributes(attribute.String("order_id", orderID.String()))

	release, err := uc.orderLocker.Lock(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		log.Error("failed to lock order", zap.Error(err))
		return nil, errors.Wrap(err, "failed to lock order")
	}
	defer release()

	order := domain.OpenOrder(orderID, cmd.CustomerID, cmd.CardNumber, cmd.toItems())
	if err := uc.orderWriter.Save(ctx, order); err != nil {
		span.RecordError(err)
		if domain.IsKind(err, domain.KindDuplicate) {
			log.Warn("order already exists, ignoring", zap.Error(err))
			outcome = "duplicate"
		} else {
			log.Error("failed to create order", zap.Error(err))
		}
		return nil, errors.Wrap(err, "failed to create order")
	}
	log.Info("order created")

	stockDeducted, err := uc.runForward(ctx, order)
	if err != nil {
		span.RecordError(err)
		uc.compensate(ctx, order, err, stockDeducted, log)
	} else if order.PaymentStatus == domain.PaymentStatusCompleted {
		uc.closeOrder(ctx, order, domain.OrderStatusClosedSuccess, "payment completed", log)
	}

	outcome = order.Status.String()
	span.SetAttributes(
		attribute.String("status", order.Status.String()),
		attribute.String("payment_status", order.PaymentStatus.String()),
	)
	log.Info("order processed",
		zap.String("status", order.Status.String()),
		zap.String("payment_status", order.PaymentStatus.String()),
		zap.String("payment_id", order.PaymentID),
	)

	return order, nil
}

// runForward runs the steps after creation and reports whether stock was deducted
func (uc *ProcessOrder) runForward(ctx context.Context, order *domain.Order) (bool, error) {
	if err := uc.enrichOrder.Execute(ctx, order); err != nil {
		return false, err
	}

	if err := uc.stockReservation.Deduct(ctx, order.Items); err != nil {
		return false, err
	}

	if err := uc.initPayment.Execute(ctx, order); err != nil {
		return true, err
	}

	return true, nil
}

func (uc *ProcessOrder) compensate(ctx context.Context, order *domain.Order, cause error, stockDeducted bool, log *zap.Logger) {
	kind := domain.KindOf(cause)
	log = log.With(zap.String("failure_kind", string(kind)), zap.Error(cause))

	switch kind {
	case domain.KindStockInsufficient:
		uc.closeOrder(ctx, order, domain.OrderStatusClosedNoStock, cause.Error(), log)

	case domain.KindInsufficientFunds, domain.KindPayment:
		uc.stockReservation.Return(ctx, order.Items)
		uc.closeOrder(ctx, order, domain.OrderStatusClosedNoCredit, cause.Error(), log)

	default:
		// Enrichment and unexpected failures cancel the order
		if stockDeducted {
			uc.stockReservation.Return(ctx, order.Items)
		}
		uc.closeOrder(ctx, order, domain.OrderStatusCancelled, cause.Error(), log)
	}
}

func (uc *ProcessOrder) closeOrder(ctx context.Context, order *domain.Order, status domain.OrderStatus, reason string, log *zap.Logger) {
	if err := order.Close(status, reason); err != nil {
		log.Error("failed to close order", zap.String("status", status.String()), zap.Error(err))
		return
	}

	if err := uc.orderWriter.Save(ctx, order); err != nil {
		log.Error("failed to persist closed order", zap.String("status", status.String()), zap.Error(err))
		return
	}

	log.Info("order closed", zap.String("status", status.String()))
}
