package domain

import (
	"fmt"

	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusOpen           OrderStatus = "OPEN"
	OrderStatusClosedSuccess  OrderStatus = "CLOSED_SUCCESS"
	OrderStatusClosedNoCredit OrderStatus = "CLOSED_NO_CREDIT"
	OrderStatusClosedNoStock  OrderStatus = "CLOSED_NO_STOCK"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is allowed from s
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusClosedSuccess, OrderStatusClosedNoCredit, OrderStatusClosedNoStock, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// PaymentStatus represents the status of the payment attached to an order
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusInProgress PaymentStatus = "IN_PROGRESS"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

// NewPaymentStatus parses a payment status reported by the payment service
func NewPaymentStatus(status string) (PaymentStatus, error) {
	switch s := PaymentStatus(status); s {
	case PaymentStatusPending, PaymentStatusInProgress, PaymentStatusCompleted, PaymentStatusFailed:
		return s, nil
	}
	return "", NewValidationError(fmt.Sprintf("invalid payment status %q", status))
}

func (s PaymentStatus) String() string {
	return string(s)
}

// Item is an order line. ID, Name and Price are filled by enrichment.
type Item struct {
	ID       string           `json:"id,omitempty"`
	Name     string           `json:"name,omitempty"`
	SKU      string           `json:"sku"`
	Quantity *int             `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// Subtotal is price times quantity, zero while either is unknown
func (i Item) Subtotal() decimal.Decimal {
	if i.Price == nil || i.Quantity == nil {
		return decimal.Zero
	}
	return i.Price.Mul(decimal.NewFromInt(int64(*i.Quantity)))
}

// Order aggregate root
type Order struct {
	ID            models.ID
	CustomerID    string
	CustomerName  string
	CustomerCPF   string
	CardNumber    string
	Items         []Item
	Status        OrderStatus
	PaymentID     string
	PaymentStatus PaymentStatus
	PaymentAmount decimal.Decimal
	Timestamps    models.Timestamps
	Version       models.Version

	events []*events.Event
}

// OpenOrder starts the lifecycle of an order received at intake
func OpenOrder(id models.ID, customerID, cardNumber string, items []Item) *Order {
	order := &Order{
		ID:            id,
		CustomerID:    customerID,
		CardNumber:    cardNumber,
		Items:         items,
		Status:        OrderStatusOpen,
		PaymentStatus: PaymentStatusPending,
		PaymentAmount: decimal.Zero,
		Timestamps:    models.NewTimestamps(),
	}

	order.recordEvent(events.NewEvent(order.ID, events.OrderCreatedEvent, OrderCreatedData{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Items:      order.Items,
	}))

	return order
}

// RecomputePaymentAmount sets the amount to the sum of the item subtotals
func (o *Order) RecomputePaymentAmount() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.PaymentAmount = total
	o.Timestamps = o.Timestamps.Update()
}

// SKUs returns the item SKUs in item order
func (o *Order) SKUs() []string {
	skus := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		skus = append(skus, item.SKU)
	}
	return skus
}

// StartPayment records the payment accepted by the payment service
func (o *Order) StartPayment(paymentID string, status PaymentStatus) {
	o.PaymentID = paymentID
	o.PaymentStatus = status
	o.Timestamps = o.Timestamps.Update()

	o.recordEvent(events.NewEvent(o.ID, events.OrderPaymentInitiatedEvent, OrderPaymentInitiatedData{
		OrderID:       o.ID,
		PaymentID:     o.PaymentID,
		PaymentStatus: o.PaymentStatus,
		PaymentAmount: o.PaymentAmount,
	}))
}

// FailPayment marks the payment as failed
func (o *Order) FailPayment() {
	o.PaymentStatus = PaymentStatusFailed
	o.Timestamps = o.Timestamps.Update()
}

// CompletePayment marks the payment as completed
func (o *Order) CompletePayment() {
	o.PaymentStatus = PaymentStatusCompleted
	o.Timestamps = o.Timestamps.Update()
}

// Close moves an open order to a terminal status
func (o *Order) Close(status OrderStatus, reason string) error {
	if !status.IsTerminal() {
		return NewValidationError(fmt.Sprintf("status %s is not terminal", status))
	}
	if o.Status.IsTerminal() {
		return NewStatusConflictError(fmt.Sprintf("order %s is already %s", o.ID, o.Status))
	}

	o.Status = status
	o.Timestamps = o.Timestamps.Update()

	o.recordEvent(events.NewEvent(o.ID, events.OrderClosedEvent, OrderClosedData{
		OrderID:       o.ID,
		Status:        o.Status,
		PaymentID:     o.PaymentID,
		PaymentStatus: o.PaymentStatus,
		Reason:        reason,
	}))

	return nil
}

// IsNew reports whether the order still has to be inserted
func (o *Order) IsNew() bool {
	for _, event := range o.events {
		if event.EventType == events.OrderCreatedEvent {
			return true
		}
	}
	return false
}

// Events returns domain events
func (o *Order) Events() []*events.Event {
	return o.events
}

// ClearEvents clears domain events
func (o *Order) ClearEvents() {
	o.events = make([]*events.Event, 0)
}

func (o *Order) recordEvent(event *events.Event) {
	o.events = append(o.events, event)
}

// Event Data Structures
type OrderCreatedData struct {
	OrderID    models.ID `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	Items      []Item    `json:"items"`
}

type OrderPaymentInitiatedData struct {
	OrderID       models.ID       `json:"order_id"`
	PaymentID     string          `json:"payment_id"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
}

type OrderClosedData struct {
	OrderID       models.ID     `json:"order_id"`
	Status        OrderStatus   `json:"status"`
	PaymentID     string        `json:"payment_id,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Reason        string        `json:"reason,omitempty"`
}
