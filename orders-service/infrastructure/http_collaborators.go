package infrastructure

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/shopspring/decimal"
)

var (
	_ domain.CustomerDirectory = (*HTTPCustomerDirectory)(nil)
	_ domain.ProductCatalog    = (*HTTPProductCatalog)(nil)
	_ domain.StockService      = (*HTTPStockService)(nil)
	_ domain.PaymentService    = (*HTTPPaymentService)(nil)
)

// HTTPCustomerDirectory looks customers up in the customer service
type HTTPCustomerDirectory struct {
	client *jsonClient
}

func NewHTTPCustomerDirectory(baseURL string, timeout time.Duration) *HTTPCustomerDirectory {
	return &HTTPCustomerDirectory{client: newJSONClient("customer", baseURL, timeout)}
}

func (d *HTTPCustomerDirectory) FindByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	var customer domain.Customer
	if err := d.client.do(ctx, http.MethodGet, "/customers/"+url.PathEscape(customerID), nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// HTTPProductCatalog resolves SKUs against the product service
type HTTPProductCatalog struct {
	client *jsonClient
}

func NewHTTPProductCatalog(baseURL string, timeout time.Duration) *HTTPProductCatalog {
	return &HTTPProductCatalog{client: newJSONClient("product", baseURL, timeout)}
}

// FindAllBySKUs returns the products known for skus; unknown SKUs are simply absent
func (c *HTTPProductCatalog) FindAllBySKUs(ctx context.Context, skus []string) ([]domain.Product, error) {
	if len(skus) == 0 {
		return []domain.Product{}, nil
	}

	query := url.Values{}
	for _, sku := range skus {
		query.Add("sku", sku)
	}

	var products []domain.Product
	if err := c.client.do(ctx, http.MethodGet, "/products/skus?"+query.Encode(), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

type stockLine struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
}

// HTTPStockService deducts and returns stock in the stock service
type HTTPStockService struct {
	client *jsonClient
}

func NewHTTPStockService(baseURL string, timeout time.Duration) *HTTPStockService {
	return &HTTPStockService{client: newJSONClient("stock", baseURL, timeout,
		http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity)}
}

func (s *HTTPStockService) Deduct(ctx context.Context, items []domain.Item) error {
	return s.client.do(ctx, http.MethodPost, "/stocks/deduct", toStockLines(items), nil)
}

func (s *HTTPStockService) ReturnItems(ctx context.Context, items []domain.Item) error {
	return s.client.do(ctx, http.MethodPost, "/stocks/reverse", toStockLines(items), nil)
}

func toStockLines(items []domain.Item) []stockLine {
	lines := make([]stockLine, len(items))
	for i, item := range items {
		quantity := 0
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		lines[i] = stockLine{ProductID: item.ID, SKU: item.SKU, Quantity: quantity}
	}
	return lines
}

type paymentRequest struct {
	OrderID       string          `json:"order_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerCPF   string          `json:"customer_cpf"`
	CardNumber    string          `json:"card_number"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
}

type paymentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HTTPPaymentService charges orders through the payment service
type HTTPPaymentService struct {
	client *jsonClient
}

func NewHTTPPaymentService(baseURL string, timeout time.Duration) *HTTPPaymentService {
	return &HTTPPaymentService{client: newJSONClient("payment", baseURL, timeout,
		http.StatusBadRequest, http.StatusPaymentRequired, http.StatusUnprocessableEntity)}
}

func (s *HTTPPaymentService) ProcessPayment(ctx context.Context, order *domain.Order) (*domain.PaymentReceipt, error) {
	request := paymentRequest{
		OrderID:       order.ID.String(),
		CustomerName:  order.CustomerName,
		CustomerCPF:   order.CustomerCPF,
		CardNumber:    order.CardNumber,
		PaymentAmount: order.PaymentAmount,
	}

	var response paymentResponse
	if err := s.client.do(ctx, http.MethodPost, "/payments", request, &response); err != nil {
		return nil, err
	}

	receipt := &domain.PaymentReceipt{ID: response.ID, Status: domain.PaymentStatusInProgress}
	if response.Status != "" {
		status, err := domain.NewPaymentStatus(response.Status)
		if err != nil {
			return nil, domain.WrapError(domain.KindUnexpected, err, "invalid payment response")
		}
		receipt.Status = status
	}
	return receipt, nil
}

func (s *HTTPPaymentService) RetrievePaymentStatus(ctx context.Context, paymentID string) (domain.PaymentStatus, error) {
	var response paymentResponse
	if err := s.client.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, &response); err != nil {
		return "", err
	}

	status, err := domain.NewPaymentStatus(response.Status)
	if err != nil {
		return "", domain.WrapError(domain.KindUnexpected, err, "invalid payment response")
	}
	return status, nil
}
