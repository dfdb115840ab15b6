package kv

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMemStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "a", map[string]int{"n": 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
	raw, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["n"] != 1 {
		t.Fatalf("got %v", got)
	}
}

func TestMemStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	_ = s.Set(ctx, "a", 1)
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemStoreGetByPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	_ = s.Set(ctx, "product:b", "b")
	_ = s.Set(ctx, "product:a", "a")
	_ = s.Set(ctx, "order:x", "x")

	out, err := s.GetByPrefix(ctx, "product:")
	if err != nil {
		t.Fatalf("prefix: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 values, got %d", len(out))
	}
	// terurut by key
	if string(out[0]) != `"a"` || string(out[1]) != `"b"` {
		t.Fatalf("unexpected order: %s %s", out[0], out[1])
	}
}

func TestMemStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	_ = s.Set(ctx, "counter", 1)

	err := s.Update(ctx, "counter", func(cur json.RawMessage) (any, error) {
		var n int
		if err := json.Unmarshal(cur, &n); err != nil {
			return nil, err
		}
		return n + 1, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	n, err := GetAs[int](ctx, s, "counter")
	if err != nil || n != 2 {
		t.Fatalf("got %d, %v", n, err)
	}

	// fn yang gagal tidak boleh menulis apa pun
	wantErr := errors.New("boom")
	err = s.Update(ctx, "counter", func(cur json.RawMessage) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
	n, _ = GetAs[int](ctx, s, "counter")
	if n != 2 {
		t.Fatalf("value changed after failed update: %d", n)
	}
}

func TestMemStoreUpdateMissingKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	err := s.Update(ctx, "new", func(cur json.RawMessage) (any, error) {
		if cur != nil {
			t.Fatalf("expected nil current value")
		}
		return "created", nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	v, err := GetAs[string](ctx, s, "new")
	if err != nil || v != "created" {
		t.Fatalf("got %q, %v", v, err)
	}
}

func TestListAs(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	type row struct {
		N int `json:"n"`
	}
	_ = s.Set(ctx, "r:1", row{N: 1})
	_ = s.Set(ctx, "r:2", row{N: 2})

	rows, err := ListAs[row](ctx, s, "r:")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].N != 1 || rows[1].N != 2 {
		t.Fatalf("got %+v", rows)
	}
}
