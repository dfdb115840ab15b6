package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/urtree/marketplace/internal/catalog"
)

type ReviewsHandler struct {
	Repo *catalog.Repo
}

func (h *ReviewsHandler) Register(r chi.Router) {
	r.Get("/reviews/product/{productId}", h.listByProduct)
	r.Post("/reviews", h.create)
}

func (h *ReviewsHandler) listByProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	revs, err := h.Repo.ListReviews(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": revs})
}

func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request) {
	var nr catalog.NewReview
	if err := json.NewDecoder(r.Body).Decode(&nr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rev, err := h.Repo.CreateReview(ctx, nr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"review": rev})
}
