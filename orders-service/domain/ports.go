package domain

import (
	"context"

	"github.com/draftea/order-system/shared/models"
	"github.com/shopspring/decimal"
)

// OrderRepository persists orders. Absence is reported as a not-found error.
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id models.ID) (*Order, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*Order, error)
	FindAll(ctx context.Context) ([]*Order, error)
}

// Customer as known by the customer directory
type Customer struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	CPF      string `json:"cpf"`
}

// Product as known by the product catalog
type Product struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	SKU   string           `json:"sku"`
	Price *decimal.Decimal `json:"price"`
}

// PaymentReceipt is the payment service answer to a payment request
type PaymentReceipt struct {
	ID     string        `json:"id"`
	Status PaymentStatus `json:"status"`
}

// CustomerDirectory looks customers up. Unknown customers are a not-found error.
type CustomerDirectory interface {
	FindByID(ctx context.Context, customerID string) (*Customer, error)
}

// ProductCatalog resolves SKUs. Unknown SKUs are omitted from the result.
type ProductCatalog interface {
	FindAllBySKUs(ctx context.Context, skus []string) ([]Product, error)
}

// StockService reserves and releases stock. A rejected-kind error signals
// insufficient stock.
type StockService interface {
	Deduct(ctx context.Context, items []Item) error
	ReturnItems(ctx context.Context, items []Item) error
}

// PaymentService charges orders. A rejected-kind error signals insufficient funds.
type PaymentService interface {
	ProcessPayment(ctx context.Context, order *Order) (*PaymentReceipt, error)
	RetrievePaymentStatus(ctx context.Context, paymentID string) (PaymentStatus, error)
}

// ReleaseFunc releases a lock taken by an OrderLocker
type ReleaseFunc func()

// OrderLocker serializes work on a single order
type OrderLocker interface {
	Lock(ctx context.Context, orderID models.ID) (ReleaseFunc, error)
}
