package application

import (
	"context"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// StockReservation deducts stock for an order and gives it back on compensation
type StockReservation struct {
	stockService domain.StockService
	logger       *zap.Logger
}

// NewStockReservation creates a new StockReservation
func NewStockReservation(stockService domain.StockService, logger *zap.Logger) *StockReservation {
	return &StockReservation{
		stockService: stockService,
		logger:       logger,
	}
}

// Deduct reserves the items. A rejection from the stock service is reported
// as insufficient stock, anything else is passed on.
func (s *StockReservation) Deduct(ctx context.Context, items []domain.Item) error {
	ctx, span := telemetry.StartSpan(ctx, "deduct_stock")
	defer span.End()

	err := s.stockService.Deduct(ctx, items)
	if err == nil {
		return nil
	}

	span.RecordError(err)
	if domain.IsKind(err, domain.KindRejected) {
		return domain.WrapError(domain.KindStockInsufficient, err, "insufficient stock")
	}

	return errors.Wrap(err, "failed to deduct stock")
}

// Return gives the items back. It never fails.
func (s *StockReservation) Return(ctx context.Context, items []domain.Item) {
	ctx, span := telemetry.StartSpan(ctx, "return_stock")
	defer span.End()

	if err := s.stockService.ReturnItems(ctx, items); err != nil {
		span.RecordError(err)
		s.logger.Error("failed to return stock",
			zap.Int("items", len(items)),
			zap.Error(err),
		)
	}
}
