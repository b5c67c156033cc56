package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler exposes the order-placement workflow over HTTP.
type Handler struct {
	saga *Saga
}

func NewHandler(saga *Saga) *Handler {
	return &Handler{saga: saga}
}

// Routes mounts the order endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/order/place", h.PlaceOrder)
}

type placeOrderRequest struct {
	UserID string `json:"userId"`
	Items  []Item `json:"items"`
}

type placeOrderResponse struct {
	Success bool   `json:"success"`
	Order   *Order `json:"order,omitempty"`
}

type placeOrderFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Item    *Item  `json:"item,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PlaceOrder runs the saga and maps its outcome onto the HTTP contract:
// 200 placed, 400 out of stock (with the offending item), 402 payment
// failed, 500 anything else.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, placeOrderFailure{Message: "invalid request body"})
		return
	}
	if req.UserID == "" || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, placeOrderFailure{Message: "userId and items are required"})
		return
	}
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, placeOrderFailure{Message: "every item needs a productId and a positive quantity"})
			return
		}
	}

	placed, err := h.saga.PlaceOrder(r.Context(), req.UserID, req.Items)
	if err != nil {
		var outOfStock *OutOfStockError
		if errors.As(err, &outOfStock) {
			writeJSON(w, http.StatusBadRequest, placeOrderFailure{
				Message: outOfStock.Message,
				Item:    &outOfStock.Item,
			})
			return
		}

		var declined *PaymentDeclinedError
		if errors.As(err, &declined) {
			writeJSON(w, http.StatusPaymentRequired, placeOrderFailure{Message: declined.Reason})
			return
		}

		writeJSON(w, http.StatusInternalServerError, placeOrderFailure{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, placeOrderResponse{Success: true, Order: placed})
}

// NewRouter builds the order service's full router.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	handler.Routes(r)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
