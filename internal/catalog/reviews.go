package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/urtree/marketplace/internal/kv"
)

func reviewPrefix(productID string) string { return fmt.Sprintf("review:%s:", productID) }

func (r *Repo) ListReviews(ctx context.Context, productID string) ([]Review, error) {
	return kv.ListAs[Review](ctx, r.Store, reviewPrefix(productID))
}

// CreateReview menyimpan review lalu menghitung ulang rating rata-rata produk
// dengan membaca ulang seluruh list review. O(n) per tulis, sesuai volume data.
func (r *Repo) CreateReview(ctx context.Context, nr NewReview) (Review, error) {
	if nr.ProductID == "" || nr.Rating < 1 || nr.Rating > 5 {
		return Review{}, errors.New("invalid review")
	}
	rev := Review{
		ID:        "rev_" + uuid.NewString(),
		ProductID: nr.ProductID,
		UserID:    nr.UserID,
		UserName:  nr.UserName,
		Rating:    nr.Rating,
		Comment:   nr.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.Store.Set(ctx, reviewPrefix(nr.ProductID)+rev.ID, rev); err != nil {
		return Review{}, err
	}

	p, err := r.Get(ctx, nr.ProductID)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return rev, nil // produk sudah dihapus, review tetap tersimpan
		}
		return Review{}, err
	}
	reviews, err := r.ListReviews(ctx, nr.ProductID)
	if err != nil {
		return Review{}, err
	}
	total := 0
	for _, rv := range reviews {
		total += rv.Rating
	}
	p.Rating = float64(total) / float64(len(reviews))
	p.Reviews = len(reviews)
	if err := r.Store.Set(ctx, Key(nr.ProductID), p); err != nil {
		return Review{}, err
	}
	return rev, nil
}
