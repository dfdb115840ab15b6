package admin

import (
	"context"
	"testing"

	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/orders"
	"github.com/urtree/marketplace/internal/users"
)

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemStore()
	r := &Repo{Store: store}

	_ = store.Set(ctx, "user:budi@mail.com", users.User{Email: "budi@mail.com", Role: users.RoleBuyer})
	_ = store.Set(ctx, "user:toko@mail.com", users.User{Email: "toko@mail.com", Role: users.RoleSeller, HasSellerAccount: true})
	// buyer yang punya seller account tetap terhitung seller
	_ = store.Set(ctx, "user:dua@mail.com", users.User{Email: "dua@mail.com", Role: users.RoleBuyer, HasSellerAccount: true})
	_ = store.Set(ctx, "product:prod_1", map[string]any{"id": "prod_1"})
	_ = store.Set(ctx, "order:order_1", orders.Order{ID: "order_1", Total: 165000})
	_ = store.Set(ctx, "order:order_2", orders.Order{ID: "order_2", Total: 95000})

	st, err := r.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalUsers != 3 || st.TotalBuyers != 2 || st.TotalSellers != 2 {
		t.Fatalf("user counts: %+v", st)
	}
	if st.TotalProducts != 1 || st.TotalOrders != 2 {
		t.Fatalf("entity counts: %+v", st)
	}
	if st.TotalRevenue != 260000 {
		t.Fatalf("revenue: %d", st.TotalRevenue)
	}
}

func TestListUsersStripsHashes(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemStore()
	r := &Repo{Store: store}

	_ = store.Set(ctx, "user:budi@mail.com", users.User{
		Email:        "budi@mail.com",
		PasswordHash: "bcrypt-hash",
		PinHash:      "bcrypt-pin",
	})

	us, err := r.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(us) != 1 {
		t.Fatalf("got %d users", len(us))
	}
	if us[0].PasswordHash != "" || us[0].PinHash != "" {
		t.Fatalf("hashes must not leak: %+v", us[0])
	}
}
