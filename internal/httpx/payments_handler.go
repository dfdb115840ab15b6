package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/orders"
	"github.com/urtree/marketplace/internal/payment"
	"github.com/urtree/marketplace/internal/redisx"
)

type PaymentsHandler struct {
	Reconciler  *payment.Reconciler
	Repo        *orders.Repo
	Gateway     *payment.SnapClient
	Cache       redisx.Cache // status cache; boleh nil
	FrontendURL string
}

func (h *PaymentsHandler) Register(r chi.Router) {
	r.Get("/payment-config", h.config)
	r.Get("/payment-status/{orderId}", h.status)
}

// RegisterWebhooks: route yang dipanggil langsung oleh gateway, tanpa anon key.
func (h *PaymentsHandler) RegisterWebhooks(r chi.Router) {
	r.Post("/payment-notification", h.notification)
	r.Get("/payment-finish", h.finish)
}

// config: client key untuk inisialisasi widget Snap di frontend.
func (h *PaymentsHandler) config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"clientKey":  h.Gateway.ClientKey(),
		"isSandbox":  h.Gateway.Sandbox(),
		"configured": h.Gateway.Configured(),
	})
}

// notification: webhook asinkron dari gateway. Datang independen dari request
// checkout, bisa terkirim lebih dari sekali.
func (h *PaymentsHandler) notification(w http.ResponseWriter, r *http.Request) {
	var n payment.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Reconciler.HandleNotification(ctx, n)
	if errors.Is(err, kv.ErrNotFound) {
		log.Printf("payment notification for unknown order %s", n.OrderID)
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process notification")
		return
	}
	log.Printf("order %s updated - status: %s, payment: %s", o.ID, o.Status, o.PaymentStatus)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// finish: redirect dari halaman pembayaran Midtrans kembali ke frontend.
func (h *PaymentsHandler) finish(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	http.Redirect(w, r, h.FrontendURL+"?payment=success&order_id="+orderID, http.StatusFound)
}

// status: cache-aside. Cek redis dulu, fallback ke store, lalu isi ulang
// cache. Checkout dan webhook menulis key yang sama.
func (h *PaymentsHandler) status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	orderID := chi.URLParam(r, "orderId")
	statusKey := fmt.Sprintf(redisx.KeyPaymentStatus, orderID)
	if h.Cache != nil {
		if cached, ok := h.Cache.Get(ctx, statusKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(cached))
			return
		}
	}

	o, err := h.Repo.Get(ctx, orderID)
	if errors.Is(err, kv.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check payment status")
		return
	}

	view := o.StatusView()
	if h.Cache != nil {
		if b, err := json.Marshal(view); err == nil {
			h.Cache.Set(ctx, statusKey, string(b), redisx.TTLStatusCache)
		}
	}
	writeJSON(w, http.StatusOK, view)
}
