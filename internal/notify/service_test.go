package notify

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/urtree/marketplace/internal/chat"
	kafkax "github.com/urtree/marketplace/internal/kafka"
	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/orders"
)

func settledMessage(t *testing.T, eventID string, items []orders.Item) kafkago.Message {
	t.Helper()
	env := orders.Envelope{
		EventID:   eventID,
		EventType: orders.EventPaymentSettled,
		Payload: kafkax.MustMarshal(orders.PaymentSettledPayload{
			OrderID:    "order_1",
			BuyerEmail: "buyer@mail.com",
			Items:      items,
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandlePaymentEventNotifiesSellers(t *testing.T) {
	ctx := context.Background()
	chats := &chat.Repo{Store: kv.NewMemStore()}
	s := &Service{Chats: chats, ServiceName: "test"}

	// dua line dari seller sama + satu seller lain: dua pesan
	msg := settledMessage(t, "ev-1", []orders.Item{
		{ProductID: "prod_1", SellerID: "seller1@toko.com"},
		{ProductID: "prod_2", SellerID: "seller1@toko.com"},
		{ProductID: "prod_3", SellerID: "seller2@toko.com"},
	})
	if err := s.HandlePaymentEvent(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	convs, err := chats.ListByUser(ctx, "buyer@mail.com")
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	for _, c := range convs {
		msgs, _ := chats.Messages(ctx, c.ID)
		if len(msgs) != 1 || msgs[0].SenderID != systemSender {
			t.Fatalf("expected one system message, got %+v", msgs)
		}
	}
}

func TestHandlePaymentEventIgnoresOtherTypes(t *testing.T) {
	ctx := context.Background()
	chats := &chat.Repo{Store: kv.NewMemStore()}
	s := &Service{Chats: chats, ServiceName: "test"}

	env := orders.Envelope{
		EventID:   "ev-2",
		EventType: orders.EventOrderCreated,
		Payload:   kafkax.MustMarshal(orders.OrderCreatedPayload{OrderID: "order_1"}),
	}
	if err := s.HandlePaymentEvent(ctx, kafkago.Message{Value: kafkax.MustMarshal(env)}); err != nil {
		t.Fatalf("handle: %v", err)
	}

	convs, _ := chats.ListByUser(ctx, "buyer@mail.com")
	if len(convs) != 0 {
		t.Fatalf("non-settled events must not create chats: %+v", convs)
	}
}

func TestHandlePaymentEventBadPayload(t *testing.T) {
	ctx := context.Background()
	s := &Service{Chats: &chat.Repo{Store: kv.NewMemStore()}, ServiceName: "test"}

	if err := s.HandlePaymentEvent(ctx, kafkago.Message{Value: []byte("not-json")}); err == nil {
		t.Fatal("expected error for invalid envelope")
	}
}
