package catalog

import "time"

// Kategori produk. Tanaman hidup kena batasan radius pengiriman.
const (
	CategoryLivePlant = "tanaman-hidup"
	CategorySeed      = "benih"
	CategoryTool      = "peralatan"
)

// Product disimpan di bawah key "product:{id}".
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int      `json:"price"` // rupiah
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Images      []string `json:"images,omitempty"`

	SellerID       string  `json:"sellerId"`
	SellerName     string  `json:"sellerName,omitempty"`
	SellerLocation string  `json:"sellerLocation,omitempty"`
	SellerRating   float64 `json:"sellerRating,omitempty"`

	Sold    int     `json:"sold"`
	Rating  float64 `json:"rating"`
	Reviews int     `json:"reviews"`

	// Khusus tanaman hidup
	PlantAge          string  `json:"plantAge,omitempty"` // <1thn | 1thn+ | 3thn+
	MaxDeliveryRadius int     `json:"maxDeliveryRadius,omitempty"`
	SellerLat         float64 `json:"sellerLat,omitempty"`
	SellerLng         float64 `json:"sellerLng,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// NewProduct: payload create. Field seller di-snapshot ke record produk.
type NewProduct struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          int      `json:"price"`
	Stock          int      `json:"stock"`
	Category       string   `json:"category"`
	Images         []string `json:"images"`
	SellerID       string   `json:"sellerId"`
	SellerName     string   `json:"sellerName"`
	SellerLocation string   `json:"sellerLocation"`

	PlantAge          string  `json:"plantAge"`
	MaxDeliveryRadius int     `json:"maxDeliveryRadius"`
	SellerLat         float64 `json:"sellerLat"`
	SellerLng         float64 `json:"sellerLng"`
}

// ProductUpdate: allow-list update per field, nil = tidak diubah.
type ProductUpdate struct {
	Name              *string   `json:"name"`
	Description       *string   `json:"description"`
	Price             *int      `json:"price"`
	Stock             *int      `json:"stock"`
	Category          *string   `json:"category"`
	Images            *[]string `json:"images"`
	PlantAge          *string   `json:"plantAge"`
	MaxDeliveryRadius *int      `json:"maxDeliveryRadius"`
	SellerLat         *float64  `json:"sellerLat"`
	SellerLng         *float64  `json:"sellerLng"`
}

type Filter struct {
	Category string
	Search   string
}

// Review disimpan di bawah key "review:{productId}:{id}".
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewReview struct {
	ProductID string `json:"productId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}
