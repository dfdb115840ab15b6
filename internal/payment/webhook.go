package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/urtree/marketplace/internal/catalog"
	kafkax "github.com/urtree/marketplace/internal/kafka"
	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/orders"
	"github.com/urtree/marketplace/internal/redisx"
)

// Notification: body webhook Midtrans.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
	TransactionTime   string `json:"transaction_time"`
}

// Reconciler memetakan status transaksi gateway ke (status, paymentStatus)
// lokal dan meng-commit stok/sold sekali saat order pertama kali jadi paid.
type Reconciler struct {
	Store    kv.Store
	Products *catalog.Repo
	Cache    redisx.Cache     // dedup + status cache, best-effort; boleh nil
	Producer orders.Publisher // topic order.payment; boleh nil
	Service  string
}

// mapStatus: capture(+fraud accept)/settlement -> paid; pending -> pending;
// deny/cancel/expire -> failed. Status lain tidak mengubah order.
func mapStatus(n Notification, cur orders.Order) (orders.Status, string) {
	switch n.TransactionStatus {
	case "capture":
		if n.FraudStatus == "accept" {
			return orders.StatusPending, orders.PaymentPaid
		}
	case "settlement":
		return orders.StatusPending, orders.PaymentPaid
	case "pending":
		return orders.StatusPendingPayment, orders.PaymentPending
	case "deny", "cancel", "expire":
		return orders.StatusCancelled, orders.PaymentFailed
	}
	return cur.Status, cur.PaymentStatus
}

// HandleNotification memproses satu notifikasi webhook. Aman terhadap
// delivery ganda: selain dedup redis, guard "paymentStatus belum paid"
// dievaluasi di dalam Store.Update yang terkunci pada key order.
func (r *Reconciler) HandleNotification(ctx context.Context, n Notification) (orders.Order, error) {
	if r.Cache != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, r.Service, n.OrderID+":"+n.TransactionStatus)
		if r.Cache.Exists(ctx, dkey) {
			return kv.GetAs[orders.Order](ctx, r.Store, orders.Key(n.OrderID))
		}
		r.Cache.Set(ctx, dkey, "1", redisx.TTLDedup)
	}

	var updated orders.Order
	var firstPaid bool
	err := r.Store.Update(ctx, orders.Key(n.OrderID), func(cur json.RawMessage) (any, error) {
		if cur == nil {
			return nil, kv.ErrNotFound
		}
		var o orders.Order
		if err := json.Unmarshal(cur, &o); err != nil {
			return nil, err
		}
		newStatus, payStatus := mapStatus(n, o)
		firstPaid = payStatus == orders.PaymentPaid && o.PaymentStatus != orders.PaymentPaid

		o.Status = newStatus
		o.PaymentStatus = payStatus
		o.PaymentType = n.PaymentType
		o.TransactionID = n.TransactionID
		o.PaymentTime = n.TransactionTime
		o.UpdatedAt = time.Now().UTC()
		updated = o
		return o, nil
	})
	if err != nil {
		return orders.Order{}, err
	}

	if firstPaid {
		for _, it := range updated.Items {
			if err := r.Products.CommitSale(ctx, it.ProductID, it.Quantity); err != nil {
				log.Printf("commit sale order=%s product=%s: %v", updated.ID, it.ProductID, err)
			}
		}
		r.publish(orders.EventPaymentSettled, updated, n)
	} else if updated.PaymentStatus == orders.PaymentFailed {
		r.publish(orders.EventPaymentFailed, updated, n)
	}

	if r.Cache != nil {
		statusKey := fmt.Sprintf(redisx.KeyPaymentStatus, updated.ID)
		r.Cache.Set(ctx, statusKey, string(kafkax.MustMarshal(updated.StatusView())), redisx.TTLStatusCache)
	}
	return updated, nil
}

func (r *Reconciler) publish(eventType string, o orders.Order, n Notification) {
	if r.Producer == nil {
		return
	}
	var payload []byte
	switch eventType {
	case orders.EventPaymentSettled:
		payload = kafkax.MustMarshal(orders.PaymentSettledPayload{
			OrderID:       o.ID,
			BuyerEmail:    o.BuyerEmail,
			Items:         o.Items,
			Total:         o.Total,
			TransactionID: n.TransactionID,
			PaymentType:   n.PaymentType,
		})
	case orders.EventPaymentFailed:
		payload = kafkax.MustMarshal(orders.PaymentFailedPayload{
			OrderID:           o.ID,
			BuyerEmail:        o.BuyerEmail,
			TransactionStatus: n.TransactionStatus,
		})
	default:
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      r.Service,
		CorrelationID: o.ID,
		Payload:       payload,
	}
	r.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
