package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/urtree/marketplace/internal/cart"
)

type CartHandler struct {
	Repo *cart.Repo
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart/{userId}", h.get)
	r.Put("/cart/{userId}", h.put)
	r.Delete("/cart/{userId}", h.clear)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Repo.Get(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": items})
}

func (h *CartHandler) put(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cart []cart.Item `json:"cart"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Put(ctx, chi.URLParam(r, "userId"), req.Cart); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": req.Cart})
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Clear(ctx, chi.URLParam(r, "userId")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
