package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/urtree/marketplace/internal/kv"
)

// Conversation keyed by "chat:{id}", messages sebagai list di
// "chatMessages:{chatId}".
type Conversation struct {
	ID            string    `json:"id"`
	BuyerID       string    `json:"buyerId"`
	SellerID      string    `json:"sellerId"`
	ProductID     string    `json:"productId"`
	LastMessage   string    `json:"lastMessage,omitempty"`
	LastMessageAt time.Time `json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

type NewMessage struct {
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
}

type Repo struct {
	Store kv.Store
}

func convKey(id string) string     { return "chat:" + id }
func messagesKey(id string) string { return "chatMessages:" + id }

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Conversation, error) {
	all, err := kv.ListAs[Conversation](ctx, r.Store, "chat:")
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, c := range all {
		if c.BuyerID == userID || c.SellerID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetOrCreate: satu conversation per (buyer, seller, product).
func (r *Repo) GetOrCreate(ctx context.Context, buyerID, sellerID, productID string) (Conversation, bool, error) {
	all, err := kv.ListAs[Conversation](ctx, r.Store, "chat:")
	if err != nil {
		return Conversation{}, false, err
	}
	for _, c := range all {
		if c.BuyerID == buyerID && c.SellerID == sellerID && c.ProductID == productID {
			return c, false, nil
		}
	}
	c := Conversation{
		ID:        "chat_" + uuid.NewString(),
		BuyerID:   buyerID,
		SellerID:  sellerID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.Store.Set(ctx, convKey(c.ID), c); err != nil {
		return Conversation{}, false, err
	}
	if err := r.Store.Set(ctx, messagesKey(c.ID), []Message{}); err != nil {
		return Conversation{}, false, err
	}
	return c, true, nil
}

func (r *Repo) Messages(ctx context.Context, chatID string) ([]Message, error) {
	msgs, err := kv.GetAs[[]Message](ctx, r.Store, messagesKey(chatID))
	if errors.Is(err, kv.ErrNotFound) {
		return []Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// Append menambah pesan ke list percakapan; id dan timestamp diisi server.
func (r *Repo) Append(ctx context.Context, chatID string, nm NewMessage) (Message, error) {
	msg := Message{
		ID:        "msg_" + uuid.NewString(),
		SenderID:  nm.SenderID,
		Text:      nm.Text,
		Timestamp: time.Now().UTC(),
	}
	msgs, err := r.Messages(ctx, chatID)
	if err != nil {
		return Message{}, err
	}
	msgs = append(msgs, msg)
	if err := r.Store.Set(ctx, messagesKey(chatID), msgs); err != nil {
		return Message{}, err
	}

	// update ringkasan conversation; gagal di sini tidak membatalkan pesan
	if c, err := kv.GetAs[Conversation](ctx, r.Store, convKey(chatID)); err == nil {
		c.LastMessage = msg.Text
		c.LastMessageAt = msg.Timestamp
		_ = r.Store.Set(ctx, convKey(chatID), c)
	}
	return msg, nil
}
