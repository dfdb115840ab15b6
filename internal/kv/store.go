package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// Store adalah persistence generik untuk semua entity (user, product, cart,
// order, chat, review). Key pakai prefix string, query cuma exact get atau
// prefix scan.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	// GetByPrefix mengembalikan semua value yang key-nya berawalan prefix,
	// urut menaik berdasarkan key.
	GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error)
	// Update menjalankan read-modify-write terkunci pada satu key.
	// fn menerima value lama (nil kalau key belum ada) dan mengembalikan
	// value baru. Dipakai untuk mutasi stok/sold dan transisi paymentStatus
	// supaya dua request konkuren tidak saling menimpa.
	Update(ctx context.Context, key string, fn func(cur json.RawMessage) (any, error)) error
}

// GetAs decode satu record ke tipe konkret.
func GetAs[T any](ctx context.Context, s Store, key string) (T, error) {
	var t T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("decode %s: %w", key, err)
	}
	return t, nil
}

// ListAs prefix scan + decode per item.
func ListAs[T any](ctx context.Context, s Store, prefix string) ([]T, error) {
	raws, err := s.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var t T
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode prefix %s: %w", prefix, err)
		}
		out = append(out, t)
	}
	return out, nil
}
