package application

import (
	"context"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InitPayment asks the payment service to charge the order. The order is
// saved whatever the outcome.
type InitPayment struct {
	paymentService domain.PaymentService
	orderWriter    *OrderWriter
	logger         *zap.Logger
}

// NewInitPayment creates a new InitPayment use case
func NewInitPayment(paymentService domain.PaymentService, orderWriter *OrderWriter, logger *zap.Logger) *InitPayment {
	return &InitPayment{
		paymentService: paymentService,
		orderWriter:    orderWriter,
		logger:         logger,
	}
}

// Execute starts the payment and records its state on the order
func (uc *InitPayment) Execute(ctx context.Context, order *domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "init_payment")
	defer span.End()

	paymentErr := uc.requestPayment(ctx, order)
	if paymentErr != nil {
		span.RecordError(paymentErr)
	}
	span.SetAttributes(attribute.String("payment_status", order.PaymentStatus.String()))

	if err := uc.orderWriter.Save(ctx, order); err != nil {
		if paymentErr != nil {
			uc.logger.Error("failed to save order after payment failure",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
			return paymentErr
		}
		return errors.Wrap(err, "failed to save order after payment")
	}

	return paymentErr
}

func (uc *InitPayment) requestPayment(ctx context.Context, order *domain.Order) error {
	receipt, err := uc.paymentService.ProcessPayment(ctx, order)
	if err != nil {
		order.FailPayment()
		if domain.IsKind(err, domain.KindRejected) {
			return domain.WrapError(domain.KindInsufficientFunds, err, "insufficient funds")
		}
		return domain.WrapError(domain.KindPayment, err, "payment failed")
	}

	if receipt == nil || receipt.ID == "" {
		order.FailPayment()
		return domain.NewError(domain.KindPayment, "payment service returned no payment id")
	}

	switch receipt.Status {
	case domain.PaymentStatusCompleted:
		order.StartPayment(receipt.ID, domain.PaymentStatusCompleted)
	case domain.PaymentStatusFailed:
		order.StartPayment(receipt.ID, domain.PaymentStatusFailed)
		return domain.NewError(domain.KindPayment, "payment was declined")
	default:
		order.StartPayment(receipt.ID, domain.PaymentStatusInProgress)
	}

	return nil
}
