package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/urtree/marketplace/internal/chat"
	kafkax "github.com/urtree/marketplace/internal/kafka"
	"github.com/urtree/marketplace/internal/orders"
	"github.com/urtree/marketplace/internal/redisx"
)

const systemSender = "system"

// Service: handler consumer topic order.payment. Saat pembayaran settle,
// kirim pesan sistem ke percakapan buyer-seller tiap seller di order.
type Service struct {
	Chats       *chat.Repo
	Cache       redisx.Cache // dedup per event; boleh nil
	ServiceName string
}

func (s *Service) HandlePaymentEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventPaymentSettled {
		return nil
	}

	if s.Cache != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
		if s.Cache.Exists(ctx, dkey) {
			return nil
		}
		s.Cache.Set(ctx, dkey, "1", redisx.TTLDedup)
	}

	p, err := kafkax.UnwrapPayload[orders.PaymentSettledPayload](env.Payload)
	if err != nil {
		return err
	}

	// satu pesan per seller yang terlibat di order
	seen := map[string]bool{}
	for _, it := range p.Items {
		if it.SellerID == "" || seen[it.SellerID] {
			continue
		}
		seen[it.SellerID] = true

		conv, _, err := s.Chats.GetOrCreate(ctx, p.BuyerEmail, it.SellerID, it.ProductID)
		if err != nil {
			return err
		}
		_, err = s.Chats.Append(ctx, conv.ID, chat.NewMessage{
			SenderID: systemSender,
			Text: fmt.Sprintf(
				"Pembayaran untuk pesanan %s sudah diterima. Penjual akan segera memproses pesanan Anda.",
				p.OrderID),
		})
		if err != nil {
			return err
		}
	}
	log.Printf("payment settled order=%s, notified %d seller(s)", p.OrderID, len(seen))
	return nil
}
