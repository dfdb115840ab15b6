package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/urtree/marketplace/internal/catalog"
	kafkax "github.com/urtree/marketplace/internal/kafka"
	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/redisx"
)

// Ongkir flat.
const ShippingCost = 15000

var ErrMissingFields = errors.New("missing required fields")

// SnapGateway membungkus pembuatan token hosted-checkout. Implementasi
// Midtrans ada di internal/payment.
type SnapGateway interface {
	Configured() bool
	CreateTransaction(ctx context.Context, o *Order) (token string, err error)
}

type CheckoutService struct {
	Store    kv.Store
	Products *catalog.Repo
	Gateway  SnapGateway
	Producer Publisher    // topic order.created; boleh nil di test
	Cache    redisx.Cache // fast-path idempotency + status cache; boleh nil
	Service  string
}

type CheckoutResult struct {
	Order      Order
	SnapToken  string
	Warning    string
	Idempotent bool
}

// CreateOrder: harga dibaca ulang dari record produk (jangan percaya total
// dari client), validasi radius pengiriman jalan dulu, lalu order dibuat.
// COD langsung commit stok/sold; online minta snap token ke gateway dan
// degradasi ke paymentStatus "manual" kalau gateway tidak tersedia.
func (s *CheckoutService) CreateOrder(ctx context.Context, req CreateOrderRequest) (CheckoutResult, error) {
	if req.BuyerEmail == "" || len(req.Items) == 0 || req.PaymentMethod == "" {
		return CheckoutResult{}, ErrMissingFields
	}
	a := req.ShippingAddress
	if a.Name == "" || a.Phone == "" || a.Address == "" || a.City == "" {
		return CheckoutResult{}, ErrMissingFields
	}

	// idempotency fast-path via redis; store yang jadi sumber kebenaran
	if req.ExternalID != "" && s.Cache != nil {
		idemKey := fmt.Sprintf(redisx.KeyIdemCheckout, req.ExternalID)
		if id, ok := s.Cache.Get(ctx, idemKey); ok && id != "" {
			if existing, err := kv.GetAs[Order](ctx, s.Store, Key(id)); err == nil {
				return CheckoutResult{Order: existing, SnapToken: existing.SnapToken, Idempotent: true}, nil
			}
		}
	}

	// snapshot produk + validasi radius
	products := make([]catalog.Product, 0, len(req.Items))
	items := make([]Item, 0, len(req.Items))
	subtotal := 0
	for _, in := range req.Items {
		if in.Quantity <= 0 {
			return CheckoutResult{}, fmt.Errorf("invalid quantity for product %s", in.ProductID)
		}
		p, err := s.Products.Get(ctx, in.ProductID)
		if errors.Is(err, kv.ErrNotFound) {
			return CheckoutResult{}, fmt.Errorf("product not found: %s", in.ProductID)
		}
		if err != nil {
			return CheckoutResult{}, err
		}
		products = append(products, p)
		items = append(items, Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			SellerID:    p.SellerID,
			SellerName:  p.SellerName,
			Quantity:    in.Quantity,
			Price:       p.Price,
		})
		subtotal += p.Price * in.Quantity
	}

	rejections, err := ValidateDelivery(products, a.City)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(rejections) > 0 {
		return CheckoutResult{}, &DeliveryError{Rejections: rejections}
	}

	o := Order{
		ID:              "order_" + uuid.NewString(),
		BuyerEmail:      req.BuyerEmail,
		ShippingAddress: a,
		Items:           items,
		Subtotal:        subtotal,
		ShippingCost:    ShippingCost,
		Total:           subtotal + ShippingCost,
		PaymentMethod:   req.PaymentMethod,
		Status:          StatusPendingPayment,
		PaymentStatus:   PaymentPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Store.Set(ctx, Key(o.ID), o); err != nil {
		return CheckoutResult{}, err
	}

	res := CheckoutResult{}
	switch req.PaymentMethod {
	case MethodCOD:
		// COD: langsung confirmed, stok/sold dicommit sekali per item
		o.Status = StatusPending
		o.PaymentStatus = PaymentCOD
		if err := s.Store.Set(ctx, Key(o.ID), o); err != nil {
			return CheckoutResult{}, err
		}
		for _, it := range items {
			if err := s.Products.CommitSale(ctx, it.ProductID, it.Quantity); err != nil {
				log.Printf("commit sale order=%s product=%s: %v", o.ID, it.ProductID, err)
			}
		}

	default:
		// pembayaran online via Snap. Gateway mati bukan alasan gagal order:
		// degradasi ke "manual" + warning.
		if s.Gateway == nil || !s.Gateway.Configured() {
			o.Status = StatusPending
			o.PaymentStatus = PaymentManual
			if err := s.Store.Set(ctx, Key(o.ID), o); err != nil {
				return CheckoutResult{}, err
			}
			res.Warning = "payment gateway not configured"
		} else if token, err := s.Gateway.CreateTransaction(ctx, &o); err != nil {
			log.Printf("snap transaction order=%s: %v", o.ID, err)
			o.Status = StatusPending
			o.PaymentStatus = PaymentManual
			if err := s.Store.Set(ctx, Key(o.ID), o); err != nil {
				return CheckoutResult{}, err
			}
			res.Warning = "payment gateway error, order created but payment must be manual"
		} else {
			o.SnapToken = token
			if err := s.Store.Set(ctx, Key(o.ID), o); err != nil {
				return CheckoutResult{}, err
			}
			res.SnapToken = token
		}
	}

	if req.ExternalID != "" && s.Cache != nil {
		idemKey := fmt.Sprintf(redisx.KeyIdemCheckout, req.ExternalID)
		s.Cache.Set(ctx, idemKey, o.ID, redisx.TTLIdempotency)
	}
	if s.Cache != nil {
		statusKey := fmt.Sprintf(redisx.KeyPaymentStatus, o.ID)
		s.Cache.Set(ctx, statusKey, string(kafkax.MustMarshal(o.StatusView())), redisx.TTLStatusCache)
	}

	s.publishCreated(o)
	res.Order = o
	return res, nil
}

func (s *CheckoutService) publishCreated(o Order) {
	if s.Producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Service,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(OrderCreatedPayload{
			OrderID:       o.ID,
			BuyerEmail:    o.BuyerEmail,
			Items:         o.Items,
			Total:         o.Total,
			PaymentMethod: o.PaymentMethod,
		}),
	}
	s.Producer.Publish(PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
