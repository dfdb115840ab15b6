package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urtree/marketplace/internal/kv"
)

const keyPrefix = "order:"

type Repo struct {
	Store kv.Store
}

func Key(id string) string { return keyPrefix + id }

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	return kv.GetAs[Order](ctx, r.Store, Key(id))
}

func (r *Repo) Put(ctx context.Context, o Order) error {
	return r.Store.Set(ctx, Key(o.ID), o)
}

func (r *Repo) ListByBuyer(ctx context.Context, buyerEmail string) ([]Order, error) {
	all, err := kv.ListAs[Order](ctx, r.Store, keyPrefix)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, o := range all {
		if o.BuyerEmail == buyerEmail {
			out = append(out, o)
		}
	}
	return out, nil
}

// ListBySeller: order masuk kalau salah satu line-nya milik seller tsb.
func (r *Repo) ListBySeller(ctx context.Context, sellerID string) ([]Order, error) {
	all, err := kv.ListAs[Order](ctx, r.Store, keyPrefix)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, o := range all {
		for _, it := range o.Items {
			if it.SellerID == sellerID {
				out = append(out, o)
				break
			}
		}
	}
	return out, nil
}

// UpdateStatus memvalidasi transisi lewat state machine, dijalankan terkunci
// pada key order.
func (r *Repo) UpdateStatus(ctx context.Context, id string, to Status) (Order, error) {
	var updated Order
	err := r.Store.Update(ctx, Key(id), func(cur json.RawMessage) (any, error) {
		if cur == nil {
			return nil, kv.ErrNotFound
		}
		var o Order
		if err := json.Unmarshal(cur, &o); err != nil {
			return nil, err
		}
		if !CanTransition(o.Status, to) {
			return nil, fmt.Errorf("invalid status transition %s -> %s", o.Status, to)
		}
		o.Status = to
		o.UpdatedAt = time.Now().UTC()
		updated = o
		return o, nil
	})
	if err != nil {
		return Order{}, err
	}
	return updated, nil
}
