package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/urtree/marketplace/internal/chat"
)

type ChatsHandler struct {
	Repo *chat.Repo
}

func (h *ChatsHandler) Register(r chi.Router) {
	r.Get("/chats/{userId}", h.list)
	r.Post("/chats", h.getOrCreate)
	r.Get("/chats/{chatId}/messages", h.messages)
	r.Post("/chats/{chatId}/messages", h.send)
}

func (h *ChatsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.Repo.ListByUser(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch chats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chats": cs})
}

func (h *ChatsHandler) getOrCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BuyerID   string `json:"buyerId"`
		SellerID  string `json:"sellerId"`
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, created, err := h.Repo.GetOrCreate(ctx, req.BuyerID, req.SellerID, req.ProductID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	writeJSON(w, code, map[string]any{"chat": c})
}

func (h *ChatsHandler) messages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	msgs, err := h.Repo.Messages(ctx, chi.URLParam(r, "chatId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (h *ChatsHandler) send(w http.ResponseWriter, r *http.Request) {
	var nm chat.NewMessage
	if err := json.NewDecoder(r.Body).Decode(&nm); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msg, err := h.Repo.Append(ctx, chi.URLParam(r, "chatId"), nm)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": msg})
}
