package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/urtree/marketplace/internal/catalog"
	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/orders"
)

type OrdersHandler struct {
	Checkout *orders.CheckoutService
	Repo     *orders.Repo
	Products *catalog.Repo
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.create)
	r.Post("/orders/validate-delivery", h.validateDelivery)
	r.Get("/orders/buyer/{buyerId}", h.listByBuyer)
	r.Get("/orders/seller/{sellerId}", h.listBySeller)
	r.Get("/orders/{id}", h.get)
	r.Put("/orders/{id}/status", h.updateStatus)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Checkout.CreateOrder(ctx, req)
	var derr *orders.DeliveryError
	switch {
	case errors.As(err, &derr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":      "some products cannot be delivered to this address",
			"rejections": derr.Rejections,
		})
	case errors.Is(err, orders.ErrMissingFields), errors.Is(err, orders.ErrUnknownCity):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		body := map[string]any{"order": res.Order, "snapToken": nullable(res.SnapToken)}
		if res.Warning != "" {
			body["warning"] = res.Warning
		}
		if res.Idempotent {
			body["idempotent"] = true
		}
		writeJSON(w, http.StatusCreated, body)
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// validateDelivery: dijalankan atas aksi eksplisit user di halaman checkout,
// sebelum place order.
func (h *OrdersHandler) validateDelivery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		City  string             `json:"city"`
		Items []orders.ItemInput `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	products := make([]catalog.Product, 0, len(req.Items))
	for _, in := range req.Items {
		p, err := h.Products.Get(ctx, in.ProductID)
		if errors.Is(err, kv.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found: "+in.ProductID)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch product")
			return
		}
		products = append(products, p)
	}

	rejections, err := orders.ValidateDelivery(products, req.City)
	if errors.Is(err, orders.ErrUnknownCity) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to validate delivery")
		return
	}
	if rejections == nil {
		rejections = []orders.DeliveryRejection{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      len(rejections) == 0,
		"rejections": rejections,
	})
}

func (h *OrdersHandler) listByBuyer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Repo.ListByBuyer(ctx, chi.URLParam(r, "buyerId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch buyer orders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": os})
}

func (h *OrdersHandler) listBySeller(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Repo.ListBySeller(ctx, chi.URLParam(r, "sellerId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch seller orders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": os})
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, kv.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": o})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if errors.Is(err, kv.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": o})
}
