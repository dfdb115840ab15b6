package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/urtree/marketplace/internal/kv"
)

const keyPrefix = "product:"

var ErrMissingFields = errors.New("missing required fields")

type Repo struct {
	Store kv.Store
}

func Key(id string) string { return keyPrefix + id }

// List: full prefix fetch lalu filter in-memory. Cukup untuk volume data
// marketplace ini, bukan query engine.
func (r *Repo) List(ctx context.Context, f Filter) ([]Product, error) {
	all, err := kv.ListAs[Product](ctx, r.Store, keyPrefix)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	search := strings.ToLower(f.Search)
	for _, p := range all {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	return kv.GetAs[Product](ctx, r.Store, Key(id))
}

func (r *Repo) ListBySeller(ctx context.Context, sellerID string) ([]Product, error) {
	all, err := kv.ListAs[Product](ctx, r.Store, keyPrefix)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, p := range all {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, np NewProduct) (Product, error) {
	if np.Name == "" || np.Price <= 0 || np.Stock < 0 || np.Category == "" {
		return Product{}, ErrMissingFields
	}
	if np.SellerID == "" {
		return Product{}, errors.New("seller id is required")
	}
	p := Product{
		ID:                "prod_" + uuid.NewString(),
		Name:              np.Name,
		Description:       np.Description,
		Price:             np.Price,
		Stock:             np.Stock,
		Category:          np.Category,
		Images:            np.Images,
		SellerID:          np.SellerID,
		SellerName:        np.SellerName,
		SellerLocation:    np.SellerLocation,
		PlantAge:          np.PlantAge,
		MaxDeliveryRadius: np.MaxDeliveryRadius,
		SellerLat:         np.SellerLat,
		SellerLng:         np.SellerLng,
		CreatedAt:         time.Now().UTC(),
	}
	if err := r.Store.Set(ctx, Key(p.ID), p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *Repo) Update(ctx context.Context, id string, upd ProductUpdate) (Product, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Stock != nil {
		p.Stock = *upd.Stock
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Images != nil {
		p.Images = *upd.Images
	}
	if upd.PlantAge != nil {
		p.PlantAge = *upd.PlantAge
	}
	if upd.MaxDeliveryRadius != nil {
		p.MaxDeliveryRadius = *upd.MaxDeliveryRadius
	}
	if upd.SellerLat != nil {
		p.SellerLat = *upd.SellerLat
	}
	if upd.SellerLng != nil {
		p.SellerLng = *upd.SellerLng
	}
	p.UpdatedAt = time.Now().UTC()
	if err := r.Store.Set(ctx, Key(id), p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.Store.Delete(ctx, Key(id))
}

// CommitSale: stock-qty, sold+qty untuk satu produk, dijalankan terkunci
// lewat Store.Update supaya order konkuren pada produk sama tidak merusak
// hitungan.
func (r *Repo) CommitSale(ctx context.Context, productID string, qty int) error {
	return r.Store.Update(ctx, Key(productID), func(cur json.RawMessage) (any, error) {
		if cur == nil {
			return nil, fmt.Errorf("product not found: %s", productID)
		}
		var p Product
		if err := json.Unmarshal(cur, &p); err != nil {
			return nil, err
		}
		p.Sold += qty
		p.Stock -= qty
		p.UpdatedAt = time.Now().UTC()
		return p, nil
	})
}
