package cart

import (
	"context"
	"errors"

	"github.com/urtree/marketplace/internal/catalog"
	"github.com/urtree/marketplace/internal/kv"
)

// Item: snapshot produk + quantity. Quantity <= 0 tidak ditolak server-side;
// client yang memfilter sebelum kirim.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

type Repo struct {
	Store kv.Store
}

func Key(userID string) string { return "cart:" + userID }

// Get: key belum ada = cart kosong.
func (r *Repo) Get(ctx context.Context, userID string) ([]Item, error) {
	items, err := kv.GetAs[[]Item](ctx, r.Store, Key(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (r *Repo) Put(ctx context.Context, userID string, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	return r.Store.Set(ctx, Key(userID), items)
}

func (r *Repo) Clear(ctx context.Context, userID string) error {
	return r.Store.Set(ctx, Key(userID), []Item{})
}
