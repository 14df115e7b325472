package application

import (
	"context"
	"testing"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/orders-service/mocks"
	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetOrder_Execute(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440000")

	order := &domain.Order{
		ID:            orderID,
		CustomerID:    "customer-1",
		CustomerName:  "Maria Silva",
		CardNumber:    "4111111111111111",
		Items:         []domain.Item{{ID: "p-a", SKU: "A", Quantity: intPtr(2), Price: decimalPtr("10.50")}},
		Status:        domain.OrderStatusOpen,
		PaymentID:     "pay-1",
		PaymentStatus: domain.PaymentStatusInProgress,
		PaymentAmount: decimal.RequireFromString("21"),
		Timestamps:    models.NewTimestamps(),
		Version:       models.Version{Value: 3},
	}

	tests := []struct {
		name           string
		query          *GetOrderQuery
		setupMocks     func(*mocks.MockOrderRepository)
		expectedError  string
		expectedResult *OrderResponse
	}{
		{
			name:  "found",
			query: &GetOrderQuery{OrderID: orderID.String()},
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.EXPECT().FindByID(mock.Anything, orderID).Return(order, nil).Once()
			},
			expectedResult: NewOrderResponse(order),
		},
		{
			name:  "not found",
			query: &GetOrderQuery{OrderID: orderID.String()},
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.EXPECT().FindByID(mock.Anything, orderID).
					Return(nil, domain.NewNotFoundError("order not found")).Once()
			},
			expectedError: "order not found",
		},
		{
			name:          "missing order ID",
			query:         &GetOrderQuery{},
			setupMocks:    func(repo *mocks.MockOrderRepository) {},
			expectedError: "order ID is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := mocks.NewMockOrderRepository(t)
			tt.setupMocks(mockRepo)

			result, err := NewGetOrder(mockRepo).Execute(context.Background(), tt.query)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedResult, result)
			}
		})
	}
}

func TestNewOrderResponse(t *testing.T) {
	order := &domain.Order{
		ID:            models.ID("550e8400-e29b-41d4-a716-446655440000"),
		CardNumber:    "4111111111111111",
		Items:         []domain.Item{{SKU: "A", Quantity: intPtr(2), Price: decimalPtr("10.50")}, {SKU: "B", Quantity: intPtr(1)}},
		Status:        domain.OrderStatusClosedSuccess,
		PaymentStatus: domain.PaymentStatusCompleted,
		PaymentAmount: decimal.RequireFromString("21"),
	}

	response := NewOrderResponse(order)

	assert.Equal(t, "CLOSED_SUCCESS", response.Status)
	assert.Equal(t, "COMPLETED", response.PaymentStatus)
	assert.Equal(t, "21", response.PaymentAmount)
	require.Len(t, response.Items, 2)
	assert.Equal(t, "10.5", *response.Items[0].Price)
	assert.Nil(t, response.Items[1].Price)
}

func TestListOrders_Execute(t *testing.T) {
	mockRepo := mocks.NewMockOrderRepository(t)
	mockRepo.EXPECT().FindAll(mock.Anything).Return([]*domain.Order{
		{ID: "a", Status: domain.OrderStatusOpen},
		{ID: "b", Status: domain.OrderStatusCancelled},
	}, nil).Once()

	result, err := NewListOrders(mockRepo).Execute(context.Background())

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "b", result[1].OrderID)

	failing := mocks.NewMockOrderRepository(t)
	failing.EXPECT().FindAll(mock.Anything).Return(nil, errors.New("database error")).Once()

	_, err = NewListOrders(failing).Execute(context.Background())
	assert.ErrorContains(t, err, "failed to list orders")
}

func TestGetOrderHistory_Execute(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440000")
	created := events.NewEvent(orderID, events.OrderCreatedEvent, map[string]interface{}{"order_id": orderID.String()})
	closed := events.NewEvent(orderID, events.OrderClosedEvent, map[string]interface{}{"status": "CANCELLED"})

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockEventStore)
		expectedError string
		expectedTypes []string
	}{
		{
			name: "returns stored events in order",
			setupMocks: func(repo *mocks.MockOrderRepository, store *mocks.MockEventStore) {
				repo.EXPECT().FindByID(mock.Anything, orderID).Return(&domain.Order{ID: orderID}, nil).Once()
				store.EXPECT().GetEvents(mock.Anything, orderID).Return([]*events.Event{created, closed}, nil).Once()
			},
			expectedTypes: []string{events.OrderCreatedEvent, events.OrderClosedEvent},
		},
		{
			name: "unknown order",
			setupMocks: func(repo *mocks.MockOrderRepository, store *mocks.MockEventStore) {
				repo.EXPECT().FindByID(mock.Anything, orderID).Return(nil, domain.NewNotFoundError("order not found")).Once()
			},
			expectedError: "order not found",
		},
		{
			name: "event store error",
			setupMocks: func(repo *mocks.MockOrderRepository, store *mocks.MockEventStore) {
				repo.EXPECT().FindByID(mock.Anything, orderID).Return(&domain.Order{ID: orderID}, nil).Once()
				store.EXPECT().GetEvents(mock.Anything, orderID).Return(nil, errors.New("database error")).Once()
			},
			expectedError: "failed to get order events",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := mocks.NewMockOrderRepository(t)
			mockStore := mocks.NewMockEventStore(t)
			tt.setupMocks(mockRepo, mockStore)

			result, err := NewGetOrderHistory(mockRepo, mockStore).Execute(context.Background(), &GetOrderQuery{OrderID: orderID.String()})

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			types := make([]string, 0, len(result))
			for _, event := range result {
				types = append(types, event.EventType)
			}
			assert.Equal(t, tt.expectedTypes, types)
		})
	}
}
