package orders

import "time"

// Metode pembayaran.
const (
	MethodCOD    = "cod"
	MethodOnline = "online" // Midtrans Snap
)

// Payment status lokal.
const (
	PaymentPending = "pending"
	PaymentCOD     = "cod"
	PaymentManual  = "manual" // gateway tidak tersedia, bayar di luar sistem
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type Address struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// Item: snapshot line order. Harga diambil dari record produk saat checkout,
// bukan dari client.
type Item struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	SellerID    string `json:"sellerId"`
	SellerName  string `json:"sellerName,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       int    `json:"price"`
}

// Order disimpan di bawah key "order:{id}".
type Order struct {
	ID              string  `json:"id"`
	BuyerEmail      string  `json:"buyerEmail"`
	ShippingAddress Address `json:"shippingAddress"`
	Items           []Item  `json:"items"`

	Subtotal     int `json:"subtotal"`
	ShippingCost int `json:"shippingCost"`
	Total        int `json:"total"`

	PaymentMethod string `json:"paymentMethod"`
	Status        Status `json:"status"`
	PaymentStatus string `json:"paymentStatus"`

	SnapToken     string `json:"snapToken,omitempty"`
	PaymentType   string `json:"paymentType,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	PaymentTime   string `json:"paymentTime,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// PaymentStatusView: body /payment-status, juga bentuk yang dicache di redis
// supaya cache hit dan jalur KV mengembalikan payload identik.
type PaymentStatusView struct {
	OrderID       string `json:"orderId"`
	Status        Status `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentType   string `json:"paymentType,omitempty"`
}

func (o Order) StatusView() PaymentStatusView {
	return PaymentStatusView{
		OrderID:       o.ID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentType:   o.PaymentType,
	}
}

type ItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	// ExternalID opsional: dipakai sebagai kunci idempotency checkout.
	ExternalID      string      `json:"externalId,omitempty"`
	BuyerEmail      string      `json:"buyerEmail"`
	ShippingAddress Address     `json:"shippingAddress"`
	Items           []ItemInput `json:"items"`
	PaymentMethod   string      `json:"paymentMethod"`
}
