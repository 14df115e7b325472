package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/draftea/order-system/orders-service/application"
	"github.com/draftea/order-system/orders-service/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// OrderHandlers serves the read side of orders
type OrderHandlers struct {
	getOrder        *application.GetOrder
	listOrders      *application.ListOrders
	getOrderHistory *application.GetOrderHistory
	logger          *zap.Logger
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(
	getOrder *application.GetOrder,
	listOrders *application.ListOrders,
	getOrderHistory *application.GetOrderHistory,
	logger *zap.Logger,
) *OrderHandlers {
	return &OrderHandlers{
		getOrder:        getOrder,
		listOrders:      listOrders,
		getOrderHistory: getOrderHistory,
		logger:          logger,
	}
}

// ListOrders returns every order, newest first
func (h *OrderHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	response, err := h.listOrders.Execute(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetOrder returns a single order
func (h *OrderHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	query := &application.GetOrderQuery{OrderID: chi.URLParam(r, "id")}

	response, err := h.getOrder.Execute(r.Context(), query)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetOrderEvents returns the lifecycle events stored for an order
func (h *OrderHandlers) GetOrderEvents(w http.ResponseWriter, r *http.Request) {
	query := &application.GetOrderQuery{OrderID: chi.URLParam(r, "id")}

	response, err := h.getOrderHistory.Execute(r.Context(), query)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// RegisterRoutes registers order routes
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Get("/events", h.GetOrderEvents)
		})
	})
}

// PaymentHandlers receives payment completion callbacks
type PaymentHandlers struct {
	processPaymentOutcome *application.ProcessPaymentOutcome
	auth                  func(http.Handler) http.Handler
	logger                *zap.Logger
}

// NewPaymentHandlers creates payment handlers. auth may be nil to leave the
// callback unauthenticated.
func NewPaymentHandlers(
	processPaymentOutcome *application.ProcessPaymentOutcome,
	auth func(http.Handler) http.Handler,
	logger *zap.Logger,
) *PaymentHandlers {
	return &PaymentHandlers{
		processPaymentOutcome: processPaymentOutcome,
		auth:                  auth,
		logger:                logger,
	}
}

// CompletePayment applies a payment outcome. Without a body the status is
// fetched from the payment service.
func (h *PaymentHandlers) CompletePayment(w http.ResponseWriter, r *http.Request) {
	var cmd application.ProcessPaymentOutcomeCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: string(domain.KindValidation)})
		return
	}
	cmd.PaymentID = chi.URLParam(r, "id")

	order, err := h.processPaymentOutcome.Execute(r.Context(), &cmd)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, application.NewOrderResponse(order))
}

// RegisterRoutes registers payment routes
func (h *PaymentHandlers) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.auth != nil {
			r.Use(h.auth)
		}
		r.Post("/payments/{id}", h.CompletePayment)
	})
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps an error kind onto an HTTP status
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindStatusConflict:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindVersionConflict, domain.KindDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		message = "internal error"
	}

	writeJSON(w, status, errorResponse{Error: message, Kind: string(kind)})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
