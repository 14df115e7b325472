package application

import (
	"context"
	"time"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// GetOrderQuery represents the query to get an order
type GetOrderQuery struct {
	OrderID string `json:"order_id"`
}

// OrderItemResponse is an order line as exposed by the API
type OrderItemResponse struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name,omitempty"`
	SKU      string  `json:"sku"`
	Quantity *int    `json:"quantity"`
	Price    *string `json:"price,omitempty"`
}

// OrderResponse represents an order as exposed by the API
type OrderResponse struct {
	OrderID       string              `json:"order_id"`
	CustomerID    string              `json:"customer_id"`
	CustomerName  string              `json:"customer_name,omitempty"`
	CustomerCPF   string              `json:"customer_cpf,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	Status        string              `json:"status"`
	PaymentID     string              `json:"payment_id,omitempty"`
	PaymentStatus string              `json:"payment_status"`
	PaymentAmount string              `json:"payment_amount"`
	Version       int                 `json:"version"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
}

// NewOrderResponse maps an order to its API representation. The card number is
// never exposed.
func NewOrderResponse(order *domain.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		var price *string
		if item.Price != nil {
			p := item.Price.String()
			price = &p
		}
		items = append(items, OrderItemResponse{
			ID:       item.ID,
			Name:     item.Name,
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Price:    price,
		})
	}

	return &OrderResponse{
		OrderID:       order.ID.String(),
		CustomerID:    order.CustomerID,
		CustomerName:  order.CustomerName,
		CustomerCPF:   order.CustomerCPF,
		Items:         items,
		Status:        order.Status.String(),
		PaymentID:     order.PaymentID,
		PaymentStatus: order.PaymentStatus.String(),
		PaymentAmount: order.PaymentAmount.String(),
		Version:       order.Version.Value,
		CreatedAt:     order.Timestamps.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     order.Timestamps.UpdatedAt.Format(time.RFC3339),
	}
}

// GetOrder use case
type GetOrder struct {
	orderRepository domain.OrderRepository
}

// NewGetOrder creates a new GetOrder use case
func NewGetOrder(orderRepository domain.OrderRepository) *GetOrder {
	return &GetOrder{orderRepository: orderRepository}
}

// Execute executes the get order use case
func (uc *GetOrder) Execute(ctx context.Context, query *GetOrderQuery) (*OrderResponse, error) {
	if query.OrderID == "" {
		return nil, domain.NewValidationError("order ID is required")
	}

	order, err := uc.orderRepository.FindByID(ctx, models.ID(query.OrderID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}

	return NewOrderResponse(order), nil
}

// ListOrders use case
type ListOrders struct {
	orderRepository domain.OrderRepository
}

// NewListOrders creates a new ListOrders use case
func NewListOrders(orderRepository domain.OrderRepository) *ListOrders {
	return &ListOrders{orderRepository: orderRepository}
}

// Execute returns every stored order
func (uc *ListOrders) Execute(ctx context.Context) ([]*OrderResponse, error) {
	orders, err := uc.orderRepository.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	responses := make([]*OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, NewOrderResponse(order))
	}
	return responses, nil
}

// OrderEventResponse is a stored lifecycle event of an order
type OrderEventResponse struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// GetOrderHistory returns the lifecycle events stored for an order
type GetOrderHistory struct {
	orderRepository domain.OrderRepository
	eventStore      events.EventStore
}

// NewGetOrderHistory creates a new GetOrderHistory use case
func NewGetOrderHistory(orderRepository domain.OrderRepository, eventStore events.EventStore) *GetOrderHistory {
	return &GetOrderHistory{
		orderRepository: orderRepository,
		eventStore:      eventStore,
	}
}

// Execute executes the get order history use case
func (uc *GetOrderHistory) Execute(ctx context.Context, query *GetOrderQuery) ([]*OrderEventResponse, error) {
	if query.OrderID == "" {
		return nil, domain.NewValidationError("order ID is required")
	}

	orderID := models.ID(query.OrderID)
	if _, err := uc.orderRepository.FindByID(ctx, orderID); err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}

	stored, err := uc.eventStore.GetEvents(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get order events")
	}

	responses := make([]*OrderEventResponse, 0, len(stored))
	for _, event := range stored {
		responses = append(responses, &OrderEventResponse{
			EventID:   event.ID.String(),
			EventType: event.EventType,
			Data:      event.Data,
			Timestamp: event.Timestamp.Format(time.RFC3339),
		})
	}
	return responses, nil
}
