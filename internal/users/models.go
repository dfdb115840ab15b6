package users

import (
	"context"
	"time"
)

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User disimpan di bawah key "user:{email}". Password dan PIN hanya disimpan
// sebagai hash bcrypt; Public() yang dikirim keluar tidak pernah membawa hash.
type User struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	PasswordHash     string `json:"passwordHash,omitempty"`
	Role             string `json:"role"`
	IsPendingSeller  bool   `json:"isPendingSeller"`
	HasSellerAccount bool   `json:"hasSellerAccount"`

	HasPin  bool   `json:"hasPin"`
	PinHash string `json:"pinHash,omitempty"`

	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Avatar  string `json:"avatar,omitempty"`

	GoogleID    string `json:"googleId,omitempty"`
	LoginMethod string `json:"loginMethod,omitempty"`

	// Profil toko (diisi saat apply seller)
	ShopName        string `json:"shopName,omitempty"`
	ShopDescription string `json:"shopDescription,omitempty"`
	ShopAddress     string `json:"shopAddress,omitempty"`
	ShopCity        string `json:"shopCity,omitempty"`

	// KYC
	IdentityType      string `json:"identityType,omitempty"`
	IdentityNumber    string `json:"identityNumber,omitempty"`
	IdentityPhoto     string `json:"identityPhoto,omitempty"`
	BankName          string `json:"bankName,omitempty"`
	BankAccountNumber string `json:"bankAccountNumber,omitempty"`
	BankAccountName   string `json:"bankAccountName,omitempty"`

	SellerApprovedAt time.Time `json:"sellerApprovedAt,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt,omitempty"`
	LastLogin        time.Time `json:"lastLogin,omitempty"`
}

// Public mengembalikan salinan tanpa field hash.
func (u User) Public() User {
	u.PasswordHash = ""
	u.PinHash = ""
	return u
}

// ProfileUpdate: allow-list field yang boleh diubah lewat update profil.
// Field nil tidak disentuh.
type ProfileUpdate struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	Avatar  *string `json:"avatar"`
}

// SellerApplication: data onboarding seller termasuk KYC.
type SellerApplication struct {
	ShopName        string `json:"shopName"`
	ShopDescription string `json:"shopDescription"`
	Address         string `json:"address"`
	City            string `json:"city"`
	Phone           string `json:"phone"`

	IdentityType      string `json:"identityType"`
	IdentityNumber    string `json:"identityNumber"`
	IdentityPhoto     string `json:"identityPhoto"`
	BankName          string `json:"bankName"`
	BankAccountNumber string `json:"bankAccountNumber"`
	BankAccountName   string `json:"bankAccountName"`
}

// GoogleProfile adalah data identitas dari provider OAuth.
type GoogleProfile struct {
	Email    string
	Name     string
	Picture  string
	GoogleID string
}

// IdentityProvider membungkus pertukaran OAuth supaya sisa sistem agnostik
// terhadap provider. Implementasi default masih mock (lihat MockGoogle).
type IdentityProvider interface {
	Profile(ctx context.Context, idToken string) (GoogleProfile, error)
}

// MockGoogle mengembalikan profil demo tetap, tanpa verifikasi token.
type MockGoogle struct{}

func (MockGoogle) Profile(ctx context.Context, idToken string) (GoogleProfile, error) {
	return GoogleProfile{
		Email:    "google.user@gmail.com",
		Name:     "Google User",
		Picture:  "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop",
		GoogleID: "google-demo",
	}, nil
}
