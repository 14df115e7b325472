package domain

import (
	"testing"

	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestOpenOrder(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440000")
	items := []Item{{SKU: "SKU001", Quantity: intPtr(2)}}

	order := OpenOrder(orderID, "customer-1", "4111111111111111", items)

	assert.Equal(t, orderID, order.ID)
	assert.Equal(t, OrderStatusOpen, order.Status)
	assert.Equal(t, PaymentStatusPending, order.PaymentStatus)
	assert.True(t, order.PaymentAmount.IsZero())
	assert.True(t, order.Version.IsNew())
	assert.True(t, order.IsNew())
	require.Len(t, order.Events(), 1)
	assert.Equal(t, events.OrderCreatedEvent, order.Events()[0].EventType)

	order.ClearEvents()
	assert.False(t, order.IsNew())
	assert.Empty(t, order.Events())
}

func TestOrder_RecomputePaymentAmount(t *testing.T) {
	tests := []struct {
		name     string
		items    []Item
		expected string
	}{
		{
			name: "sums price times quantity",
			items: []Item{
				{SKU: "A", Quantity: intPtr(2), Price: decimalPtr("10.50")},
				{SKU: "B", Quantity: intPtr(3), Price: decimalPtr("1.10")},
			},
			expected: "24.3",
		},
		{
			name: "item without price contributes zero",
			items: []Item{
				{SKU: "A", Quantity: intPtr(2), Price: decimalPtr("10")},
				{SKU: "B", Quantity: intPtr(5)},
			},
			expected: "20",
		},
		{
			name:     "no items",
			items:    []Item{},
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{Items: tt.items, PaymentAmount: decimal.NewFromInt(999)}

			order.RecomputePaymentAmount()

			assert.True(t, decimal.RequireFromString(tt.expected).Equal(order.PaymentAmount),
				"expected %s, got %s", tt.expected, order.PaymentAmount)
		})
	}
}

func TestOrder_Close(t *testing.T) {
	tests := []struct {
		name          string
		current       OrderStatus
		target        OrderStatus
		expectedError string
		expectedKind  ErrorKind
	}{
		{
			name:    "open to closed success",
			current: OrderStatusOpen,
			target:  OrderStatusClosedSuccess,
		},
		{
			name:    "open to cancelled",
			current: OrderStatusOpen,
			target:  OrderStatusCancelled,
		},
		{
			name:          "terminal order cannot be closed again",
			current:       OrderStatusClosedNoStock,
			target:        OrderStatusClosedSuccess,
			expectedError: "is already CLOSED_NO_STOCK",
			expectedKind:  KindStatusConflict,
		},
		{
			name:          "target must be terminal",
			current:       OrderStatusOpen,
			target:        OrderStatusOpen,
			expectedError: "is not terminal",
			expectedKind:  KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{ID: models.GenerateUUID(), Status: tt.current}

			err := order.Close(tt.target, "test")

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Equal(t, tt.expectedKind, KindOf(err))
				assert.Equal(t, tt.current, order.Status)
				assert.Empty(t, order.Events())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.target, order.Status)
				require.Len(t, order.Events(), 1)
				assert.Equal(t, events.OrderClosedEvent, order.Events()[0].EventType)
			}
		})
	}
}

func TestOrder_StartPayment(t *testing.T) {
	order := &Order{ID: models.GenerateUUID(), Status: OrderStatusOpen, PaymentStatus: PaymentStatusPending}

	order.StartPayment("pay-1", PaymentStatusInProgress)

	assert.Equal(t, "pay-1", order.PaymentID)
	assert.Equal(t, PaymentStatusInProgress, order.PaymentStatus)
	require.Len(t, order.Events(), 1)

	var data OrderPaymentInitiatedData
	require.NoError(t, order.Events()[0].UnmarshalPayload(&data))
	assert.Equal(t, "pay-1", data.PaymentID)
}

func TestNewPaymentStatus(t *testing.T) {
	status, err := NewPaymentStatus("COMPLETED")
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusCompleted, status)

	_, err = NewPaymentStatus("REFUNDED")
	assert.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestKindOf(t *testing.T) {
	rejected := NewError(KindRejected, "stock rejected")

	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "untagged", err: errors.New("boom"), expected: KindUnexpected},
		{name: "tagged", err: rejected, expected: KindRejected},
		{name: "wrapped tagged", err: errors.Wrap(rejected, "deduct"), expected: KindRejected},
		{name: "outermost tag wins", err: WrapError(KindStockInsufficient, rejected, "no stock"), expected: KindStockInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "plain", NewError(KindPayment, "plain").Error())
	assert.Equal(t, "outer: inner", WrapError(KindPayment, errors.New("inner"), "outer").Error())
	assert.Equal(t, "inner", WrapError(KindPayment, errors.New("inner"), "").Error())
}
