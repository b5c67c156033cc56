package inventory

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler exposes the stock store over HTTP.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type stockRequest struct {
	Items []Item `json:"items"`
}

type checkResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Item    *Item  `json:"item,omitempty"`
}

// Check verifies and decrements stock in one step. The response is always
// 200: an unavailable item is a business outcome, not an HTTP error.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, checkResponse{Message: "invalid request body"})
		return
	}

	offending, ok := h.store.Reserve(req.Items)
	if !ok {
		slog.InfoContext(r.Context(), "reservation rejected",
			"product_id", offending.ProductID,
			"requested", offending.Quantity,
		)
		writeJSON(w, http.StatusOK, checkResponse{
			Success: false,
			Message: "Item out of stock",
			Item:    offending,
		})
		return
	}

	writeJSON(w, http.StatusOK, checkResponse{Success: true})
}

// Release restores quantities reserved by an earlier Check. Called by the
// order orchestrator as saga compensation.
func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, checkResponse{Message: "invalid request body"})
		return
	}

	h.store.Release(req.Items)
	slog.InfoContext(r.Context(), "reservation released", "items", len(req.Items))
	writeJSON(w, http.StatusOK, checkResponse{Success: true})
}

// NewRouter builds the inventory service's router.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Post("/inventory/check", handler.Check)
	r.Post("/inventory/release", handler.Release)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
