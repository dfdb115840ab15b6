package cart

import (
	"context"
	"testing"

	"github.com/urtree/marketplace/internal/catalog"
	"github.com/urtree/marketplace/internal/kv"
)

func TestGetEmptyCart(t *testing.T) {
	ctx := context.Background()
	r := &Repo{Store: kv.NewMemStore()}

	items, err := r.Get(ctx, "budi@mail.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("missing cart must read as empty list, got %v", items)
	}
}

func TestPutGetClear(t *testing.T) {
	ctx := context.Background()
	r := &Repo{Store: kv.NewMemStore()}

	in := []Item{
		{Product: catalog.Product{ID: "prod_1", Name: "Monstera", Price: 150000}, Quantity: 2},
		{Product: catalog.Product{ID: "prod_2", Name: "Benih Cabai", Price: 15000}, Quantity: 1},
	}
	if err := r.Put(ctx, "budi@mail.com", in); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := r.Get(ctx, "budi@mail.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0].Product.ID != "prod_1" || got[0].Quantity != 2 {
		t.Fatalf("got %+v", got)
	}

	if err := r.Clear(ctx, "budi@mail.com"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = r.Get(ctx, "budi@mail.com")
	if len(got) != 0 {
		t.Fatalf("cart not cleared: %+v", got)
	}
}

func TestPutNilNormalizes(t *testing.T) {
	ctx := context.Background()
	r := &Repo{Store: kv.NewMemStore()}

	if err := r.Put(ctx, "budi@mail.com", nil); err != nil {
		t.Fatalf("put nil: %v", err)
	}
	got, err := r.Get(ctx, "budi@mail.com")
	if err != nil || got == nil {
		t.Fatalf("got %v, %v", got, err)
	}
}
