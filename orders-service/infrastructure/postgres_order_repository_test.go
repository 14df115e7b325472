package infrastructure

import (
	"testing"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresMapping_RoundTrip(t *testing.T) {
	price := decimal.RequireFromString("10.50")
	order := &domain.Order{
		ID:           models.ID("order-1"),
		CustomerID:   "customer-1",
		CustomerName: "Maria Silva",
		CustomerCPF:  "12345678900",
		CardNumber:   "4111111111111111",
		Items: []domain.Item{
			{ID: "p-a", Name: "Pen", SKU: "A", Quantity: intPtr(2), Price: &price},
			{SKU: "A", Quantity: intPtr(1)},
		},
		Status:        domain.OrderStatusOpen,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentAmount: decimal.RequireFromString("21"),
		Timestamps:    models.NewTimestamps(),
		Version:       models.Version{Value: 1},
	}

	pgOrder, pgItems := toPostgres(order, order.Version.Next())

	assert.Equal(t, 2, pgOrder.Version)
	assert.False(t, pgOrder.PaymentID.Valid)
	require.Len(t, pgItems, 2)
	assert.Equal(t, 0, pgItems[0].Position)
	assert.Equal(t, 1, pgItems[1].Position)
	assert.Equal(t, "order-1", pgItems[1].OrderID)
	assert.True(t, pgItems[0].Price.Valid)
	assert.False(t, pgItems[1].Price.Valid)

	restored := toDomain(pgOrder, pgItems)

	assert.Equal(t, order.ID, restored.ID)
	assert.Equal(t, order.CustomerName, restored.CustomerName)
	assert.Equal(t, order.Status, restored.Status)
	assert.Equal(t, order.PaymentStatus, restored.PaymentStatus)
	assert.Equal(t, "", restored.PaymentID)
	assert.True(t, order.PaymentAmount.Equal(restored.PaymentAmount))
	assert.Equal(t, 2, restored.Version.Value)
	require.Len(t, restored.Items, 2)
	assert.Equal(t, "Pen", restored.Items[0].Name)
	assert.Equal(t, 2, *restored.Items[0].Quantity)
	assert.True(t, price.Equal(*restored.Items[0].Price))
	assert.Nil(t, restored.Items[1].Price)
	assert.Empty(t, restored.Events())
}

func TestPostgresMapping_PaymentID(t *testing.T) {
	order := &domain.Order{
		ID:            models.ID("order-1"),
		Status:        domain.OrderStatusClosedSuccess,
		PaymentID:     "pay-1",
		PaymentStatus: domain.PaymentStatusCompleted,
	}

	pgOrder, pgItems := toPostgres(order, models.Version{Value: 4})

	assert.True(t, pgOrder.PaymentID.Valid)
	assert.Equal(t, "pay-1", pgOrder.PaymentID.String)
	assert.Empty(t, pgItems)
	assert.Equal(t, "pay-1", toDomain(pgOrder, nil).PaymentID)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(errors.Wrap(&pq.Error{Code: "23505"}, "insert")))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
