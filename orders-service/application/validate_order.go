package application

import (
	"strings"

	"github.com/draftea/order-system/orders-service/domain"
)

// CreateOrderCommand is the order received at intake
type CreateOrderCommand struct {
	OrderID    string             `json:"order_id"`
	CustomerID string             `json:"customer_id"`
	CardNumber string             `json:"card_number"`
	Items      []OrderItemCommand `json:"items"`
}

// OrderItemCommand is a line of an incoming order
type OrderItemCommand struct {
	SKU      string `json:"sku"`
	Quantity *int   `json:"quantity"`
}

// ValidateOrderStrategy is one validation step over an incoming order
type ValidateOrderStrategy interface {
	Validate(cmd *CreateOrderCommand) error
}

// OrderValidator runs its strategies in order and stops at the first failure
type OrderValidator struct {
	strategies []ValidateOrderStrategy
}

// NewOrderValidator creates a validator running strategies in the given order
func NewOrderValidator(strategies ...ValidateOrderStrategy) *OrderValidator {
	return &OrderValidator{strategies: strategies}
}

// Validate returns the first validation error, if any
func (v *OrderValidator) Validate(cmd *CreateOrderCommand) error {
	for _, strategy := range v.strategies {
		if err := strategy.Validate(cmd); err != nil {
			return err
		}
	}
	return nil
}

// MandatoryFieldsValidation checks the fields every order must carry.
// Quantity sign is not checked.
type MandatoryFieldsValidation struct{}

func (MandatoryFieldsValidation) Validate(cmd *CreateOrderCommand) error {
	if cmd == nil {
		return domain.NewValidationError("Order cannot be null")
	}

	if strings.TrimSpace(cmd.OrderID) == "" {
		return domain.NewValidationError("Order ID cannot be null")
	}

	if len(cmd.Items) == 0 {
		return domain.NewValidationError("Order items cannot be null or empty")
	}

	for _, item := range cmd.Items {
		if strings.TrimSpace(item.SKU) == "" {
			return domain.NewValidationError("Order items must have a valid SKU")
		}
	}

	for _, item := range cmd.Items {
		if item.Quantity == nil {
			return domain.NewValidationError("Order items must have a valid quantity")
		}
	}

	if strings.TrimSpace(cmd.CustomerID) == "" {
		return domain.NewValidationError("Customer ID cannot be null")
	}

	if strings.TrimSpace(cmd.CardNumber) == "" {
		return domain.NewValidationError("Card number cannot be empty")
	}

	return nil
}

func (cmd *CreateOrderCommand) toItems() []domain.Item {
	items := make([]domain.Item, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		quantity := *item.Quantity
		items = append(items, domain.Item{SKU: item.SKU, Quantity: &quantity})
	}
	return items
}
