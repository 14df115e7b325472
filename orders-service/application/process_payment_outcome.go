package application

import (
	"context"
	"fmt"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ProcessPaymentOutcomeCommand carries a payment result learned out of band.
// An empty Status means the result has to be fetched from the payment service.
type ProcessPaymentOutcomeCommand struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status,omitempty"`
}

// ProcessPaymentOutcome closes an open order once its payment result is known
type ProcessPaymentOutcome struct {
	orderRepository  domain.OrderRepository
	paymentService   domain.PaymentService
	stockReservation *StockReservation
	orderWriter      *OrderWriter
	orderLocker      domain.OrderLocker
	logger           *zap.Logger
}

// NewProcessPaymentOutcome creates a new ProcessPaymentOutcome use case
func NewProcessPaymentOutcome(
	orderRepository domain.OrderRepository,
	paymentService domain.PaymentService,
	stockReservation *StockReservation,
	orderWriter *OrderWriter,
	orderLocker domain.OrderLocker,
	logger *zap.Logger,
) *ProcessPaymentOutcome {
	return &ProcessPaymentOutcome{
		orderRepository:  orderRepository,
		paymentService:   paymentService,
		stockReservation: stockReservation,
		orderWriter:      orderWriter,
		orderLocker:      orderLocker,
		logger:           logger,
	}
}

// Execute applies the payment outcome to the order paid by cmd.PaymentID
func (uc *ProcessPaymentOutcome) Execute(ctx context.Context, cmd *ProcessPaymentOutcomeCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "process_payment_outcome",
		trace.WithAttributes(attribute.String("payment_id", cmd.PaymentID)),
	)
	defer span.End()

	if err := uc.validateCommand(cmd); err != nil {
		span.RecordError(err)
		return nil, err
	}

	found, err := uc.orderRepository.FindByPaymentID(ctx, cmd.PaymentID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to find order")
	}

	release, err := uc.orderLocker.Lock(ctx, found.ID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to lock order")
	}
	defer release()

	order, err := uc.orderRepository.FindByID(ctx, found.ID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to reload order")
	}

	if order.Status != domain.OrderStatusOpen {
		err := domain.NewStatusConflictError(fmt.Sprintf("order %s is %s, expected %s", order.ID, order.Status, domain.OrderStatusOpen))
		span.RecordError(err)
		return nil, err
	}

	status, err := uc.resolveStatus(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	log := uc.logger.With(
		zap.String("order_id", order.ID.String()),
		zap.String("payment_id", cmd.PaymentID),
		zap.String("payment_status", status.String()),
	)

	switch status {
	case domain.PaymentStatusFailed:
		uc.stockReservation.Return(ctx, order.Items)
		order.FailPayment()
		if err := order.Close(domain.OrderStatusClosedNoCredit, "payment failed"); err != nil {
			return nil, err
		}
	case domain.PaymentStatusCompleted:
		order.CompletePayment()
		if err := order.Close(domain.OrderStatusClosedSuccess, "payment completed"); err != nil {
			return nil, err
		}
	default:
		err := domain.NewValidationError(fmt.Sprintf("payment %s is still %s", cmd.PaymentID, status))
		span.RecordError(err)
		return nil, err
	}

	if err := uc.orderWriter.Save(ctx, order); err != nil {
		span.RecordError(err)
		log.Error("failed to save order after payment outcome", zap.Error(err))
		return nil, errors.Wrap(err, "failed to save order")
	}

	span.SetAttributes(attribute.String("status", order.Status.String()))
	log.Info("payment outcome applied", zap.String("status", order.Status.String()))

	return order, nil
}

func (uc *ProcessPaymentOutcome) resolveStatus(ctx context.Context, cmd *ProcessPaymentOutcomeCommand) (domain.PaymentStatus, error) {
	if cmd.Status != "" {
		return domain.NewPaymentStatus(cmd.Status)
	}

	status, err := uc.paymentService.RetrievePaymentStatus(ctx, cmd.PaymentID)
	if err != nil {
		return "", errors.Wrap(err, "failed to retrieve payment status")
	}
	return status, nil
}

// validateCommand validates the payment outcome command
func (uc *ProcessPaymentOutcome) validateCommand(cmd *ProcessPaymentOutcomeCommand) error {
	if cmd.PaymentID == "" {
		return domain.NewValidationError("payment ID is required")
	}

	if cmd.Status != "" {
		status, err := domain.NewPaymentStatus(cmd.Status)
		if err != nil {
			return err
		}
		if status != domain.PaymentStatusCompleted && status != domain.PaymentStatusFailed {
			return domain.NewValidationError("status must be either COMPLETED or FAILED")
		}
	}

	return nil
}
