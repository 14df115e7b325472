package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
)

// EnrichOrderStrategy fills derived order fields from a collaborator
type EnrichOrderStrategy interface {
	Enrich(ctx context.Context, order *domain.Order) error
}

// EnrichOrderDetails runs the enrichment strategies in order and saves the result.
// Every failure comes back as an enrichment error.
type EnrichOrderDetails struct {
	strategies  []EnrichOrderStrategy
	orderWriter *OrderWriter
}

// NewEnrichOrderDetails creates a new EnrichOrderDetails use case
func NewEnrichOrderDetails(orderWriter *OrderWriter, strategies ...EnrichOrderStrategy) *EnrichOrderDetails {
	return &EnrichOrderDetails{
		strategies:  strategies,
		orderWriter: orderWriter,
	}
}

// Execute enriches and persists the order
func (uc *EnrichOrderDetails) Execute(ctx context.Context, order *domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "enrich_order_details")
	defer span.End()

	for _, strategy := range uc.strategies {
		if err := strategy.Enrich(ctx, order); err != nil {
			span.RecordError(err)
			return domain.WrapError(domain.KindEnrichment, err, "failed to enrich order details")
		}
	}

	if err := uc.orderWriter.Save(ctx, order); err != nil {
		span.RecordError(err)
		return domain.WrapError(domain.KindEnrichment, errors.Wrap(err, "failed to save order"), "failed to enrich order details")
	}

	return nil
}

// CustomerDetailsStrategy fills the customer name and CPF
type CustomerDetailsStrategy struct {
	customerDirectory domain.CustomerDirectory
}

// NewCustomerDetailsStrategy creates a new CustomerDetailsStrategy
func NewCustomerDetailsStrategy(customerDirectory domain.CustomerDirectory) *CustomerDetailsStrategy {
	return &CustomerDetailsStrategy{customerDirectory: customerDirectory}
}

func (s *CustomerDetailsStrategy) Enrich(ctx context.Context, order *domain.Order) error {
	customer, err := s.customerDirectory.FindByID(ctx, order.CustomerID)
	if err != nil {
		return errors.Wrapf(err, "failed to find customer %s", order.CustomerID)
	}
	if customer == nil {
		return domain.NewNotFoundError(fmt.Sprintf("customer %s not found", order.CustomerID))
	}

	order.CustomerName = customer.FullName
	order.CustomerCPF = customer.CPF
	return nil
}

// ProductDetailsStrategy resolves every SKU in one catalog lookup, fills item
// details and recomputes the payment amount
type ProductDetailsStrategy struct {
	productCatalog domain.ProductCatalog
}

// NewProductDetailsStrategy creates a new ProductDetailsStrategy
func NewProductDetailsStrategy(productCatalog domain.ProductCatalog) *ProductDetailsStrategy {
	return &ProductDetailsStrategy{productCatalog: productCatalog}
}

func (s *ProductDetailsStrategy) Enrich(ctx context.Context, order *domain.Order) error {
	products, err := s.productCatalog.FindAllBySKUs(ctx, order.SKUs())
	if err != nil {
		return errors.Wrap(err, "failed to find products")
	}

	bySKU := make(map[string]domain.Product, len(products))
	for _, product := range products {
		bySKU[product.SKU] = product
	}

	var missing []string
	seen := make(map[string]bool)
	for _, item := range order.Items {
		if _, ok := bySKU[item.SKU]; !ok && !seen[item.SKU] {
			seen[item.SKU] = true
			missing = append(missing, item.SKU)
		}
	}
	if len(missing) > 0 {
		return domain.NewNotFoundError(fmt.Sprintf("Invalid sku(s): %s", strings.Join(missing, ", ")))
	}

	for i := range order.Items {
		product := bySKU[order.Items[i].SKU]
		order.Items[i].ID = product.ID
		order.Items[i].Name = product.Name
		order.Items[i].Price = product.Price
	}

	order.RecomputePaymentAmount()
	return nil
}
