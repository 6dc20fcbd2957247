package transport

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	MessageMissingFields  = "Missing required fields"
	MessageInvalidBody    = "Invalid request body"
	MessageOrderPlaced    = "Order placed successfully"
	MessageOrderDeclined  = "Transaction declined by bank"
	MessageGatewayFailure = "Payment gateway error"
)

// PlaceOrderResponse is the body returned for every classified submission
type PlaceOrderResponse struct {
	Message     string              `json:"message"`
	OrderNumber string              `json:"orderNumber"`
	Status      domain.OrderStatus  `json:"status"`
	Fulfillment service.Fulfillment `json:"fulfillment"`
}

// OrderHandler handles checkout submissions
type OrderHandler struct {
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(checkoutService service.CheckoutService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers POST /orders behind the optional limiter
func (h *OrderHandler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter)
		}
		r.Post("/orders", h.PlaceOrder)
	})
}

// statusFor maps the classification outcome to the HTTP status and message
func statusFor(outcome domain.OrderStatus) (int, string) {
	switch outcome {
	case domain.OrderStatusDeclined:
		return http.StatusBadRequest, MessageOrderDeclined
	case domain.OrderStatusFailed:
		return http.StatusInternalServerError, MessageGatewayFailure
	default:
		return http.StatusOK, MessageOrderPlaced
	}
}

// PlaceOrder handles POST /orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))

		if middleware.IsValidationError(err) {
			middleware.RespondWithValidationErrors(w, MessageMissingFields, middleware.FormatValidationErrors(err))
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, MessageInvalidBody)
		return
	}

	result, err := h.checkoutService.PlaceOrder(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			middleware.RespondWithError(w, http.StatusBadRequest, MessageMissingFields)
			return
		}

		h.logger.Error("Order placement failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.MessageInternalServerError)
		return
	}

	statusCode, message := statusFor(result.Outcome)
	middleware.RespondWithJSON(w, statusCode, PlaceOrderResponse{
		Message:     message,
		OrderNumber: result.OrderNumber,
		Status:      result.Outcome,
		Fulfillment: result.Fulfillment,
	})
}
