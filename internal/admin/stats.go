package admin

import (
	"context"

	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/orders"
	"github.com/urtree/marketplace/internal/users"
)

type Stats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalBuyers   int `json:"totalBuyers"`
	TotalSellers  int `json:"totalSellers"`
	TotalProducts int `json:"totalProducts"`
	TotalOrders   int `json:"totalOrders"`
	TotalRevenue  int `json:"totalRevenue"`
}

type Repo struct {
	Store kv.Store
}

func (r *Repo) ListUsers(ctx context.Context) ([]users.User, error) {
	all, err := kv.ListAs[users.User](ctx, r.Store, "user:")
	if err != nil {
		return nil, err
	}
	for i := range all {
		all[i] = all[i].Public()
	}
	return all, nil
}

func (r *Repo) ListOrders(ctx context.Context) ([]orders.Order, error) {
	return kv.ListAs[orders.Order](ctx, r.Store, "order:")
}

func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	us, err := kv.ListAs[users.User](ctx, r.Store, "user:")
	if err != nil {
		return Stats{}, err
	}
	ps, err := r.Store.GetByPrefix(ctx, "product:")
	if err != nil {
		return Stats{}, err
	}
	os, err := r.ListOrders(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		TotalUsers:    len(us),
		TotalProducts: len(ps),
		TotalOrders:   len(os),
	}
	for _, u := range us {
		if u.Role == users.RoleBuyer {
			st.TotalBuyers++
		}
		if u.Role == users.RoleSeller || u.HasSellerAccount {
			st.TotalSellers++
		}
	}
	for _, o := range os {
		st.TotalRevenue += o.Total
	}
	return st, nil
}
