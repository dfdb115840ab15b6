package redisx

import "time"

const (
	// Dedup notifikasi pembayaran / event consumer: dedup:{service}:{id}
	// (id = event_id, atau order_id:transaction_status untuk webhook)
	KeyDedup = "dedup:%s:%s"

	// Cache status pembayaran: payment_status:{order_id} -> {"status":...,"paymentStatus":...}
	KeyPaymentStatus = "payment_status:%s"

	// Shortcut idempotency checkout: idem:checkout:{external_id} -> order_id.
	// KV store tetap jadi sumber kebenaran, redis cuma fast-path.
	KeyIdemCheckout = "idem:checkout:%s"
)

var (
	TTLDedup       = 48 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLIdempotency = 24 * time.Hour
)
