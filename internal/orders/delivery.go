package orders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urtree/marketplace/internal/catalog"
)

var ErrUnknownCity = errors.New("kota tidak valid")

// DeliveryRejection: satu line cart yang tidak bisa dikirim.
type DeliveryRejection struct {
	ProductID  string `json:"productId"`
	Product    string `json:"product"`
	Seller     string `json:"seller"`
	DistanceKm int    `json:"distanceKm"`
	MaxKm      int    `json:"maxKm"`
	Message    string `json:"message"`
}

// DeliveryError dikembalikan checkout saat ada line yang ditolak.
type DeliveryError struct {
	Rejections []DeliveryRejection
}

func (e *DeliveryError) Error() string {
	msgs := make([]string, len(e.Rejections))
	for i, r := range e.Rejections {
		msgs[i] = r.Message
	}
	return strings.Join(msgs, "; ")
}

// ValidateDelivery mengecek radius pengiriman tiap produk terhadap kota buyer.
// Hanya tanaman hidup yang punya maxDeliveryRadius + koordinat seller yang
// divalidasi; kategori lain dan produk tanpa radius/koordinat lolos.
func ValidateDelivery(products []catalog.Product, city string) ([]DeliveryRejection, error) {
	buyer, ok := CityCoordinates[city]
	if !ok {
		return nil, ErrUnknownCity
	}

	var rejections []DeliveryRejection
	for _, p := range products {
		if p.Category != catalog.CategoryLivePlant ||
			p.MaxDeliveryRadius == 0 || p.SellerLat == 0 || p.SellerLng == 0 {
			continue
		}
		dist := Distance(p.SellerLat, p.SellerLng, buyer.Lat, buyer.Lng)
		if dist > p.MaxDeliveryRadius {
			rejections = append(rejections, DeliveryRejection{
				ProductID:  p.ID,
				Product:    p.Name,
				Seller:     p.SellerName,
				DistanceKm: dist,
				MaxKm:      p.MaxDeliveryRadius,
				Message: fmt.Sprintf(
					`"%s" dari %s tidak dapat dikirim ke alamat Anda (jarak %d km > maksimal %d km)`,
					p.Name, p.SellerName, dist, p.MaxDeliveryRadius),
			})
		}
	}
	return rejections, nil
}
