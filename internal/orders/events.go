package orders

import (
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventPaymentSettled = "PaymentSettled"
	EventPaymentFailed  = "PaymentFailed"
)

// Envelope membungkus semua event lifecycle order.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID       string `json:"order_id"`
	BuyerEmail    string `json:"buyer_email"`
	Items         []Item `json:"items"`
	Total         int    `json:"total"`
	PaymentMethod string `json:"payment_method"`
}

type PaymentSettledPayload struct {
	OrderID       string `json:"order_id"`
	BuyerEmail    string `json:"buyer_email"`
	Items         []Item `json:"items"`
	Total         int    `json:"total"`
	TransactionID string `json:"transaction_id,omitempty"`
	PaymentType   string `json:"payment_type,omitempty"`
}

type PaymentFailedPayload struct {
	OrderID           string `json:"order_id"`
	BuyerEmail        string `json:"buyer_email"`
	TransactionStatus string `json:"transaction_status"`
}

// Publisher kecil supaya service bisa dites tanpa broker.
// *kafka.Producer memenuhi interface ini.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}
