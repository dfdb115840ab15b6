package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/urtree/marketplace/internal/kv"
)

const keyPrefix = "user:"

var (
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPIN         = errors.New("pin must be 6 digits")
	ErrNoPIN              = errors.New("no pin set")
	ErrNoSellerAccount    = errors.New("user does not have seller account")
	ErrMissingFields      = errors.New("missing required fields")
)

var pinRe = regexp.MustCompile(`^[0-9]{6}$`)

type Repo struct {
	Store       kv.Store
	IDP         IdentityProvider
	AdminEmails []string
}

func Key(email string) string { return keyPrefix + email }

func (r *Repo) isAdminEmail(email string) bool {
	for _, a := range r.AdminEmails {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}

func (r *Repo) Register(ctx context.Context, email, password, name string) (User, error) {
	if email == "" || password == "" || name == "" {
		return User{}, ErrMissingFields
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	role := RoleBuyer
	if r.isAdminEmail(email) {
		role = RoleAdmin
	}
	u := User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	// cek-duplikat dan insert satu atomic update, register balapan cuma
	// meloloskan satu pemenang.
	err = r.Store.Update(ctx, Key(email), func(cur json.RawMessage) (any, error) {
		if cur != nil {
			return nil, ErrAlreadyExists
		}
		return u, nil
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *Repo) Login(ctx context.Context, email, password string) (User, error) {
	u, err := r.Get(ctx, email)
	if errors.Is(err, kv.ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// GoogleLogin: buat user baru dari profil provider kalau belum ada, kalau
// sudah ada cukup update lastLogin.
func (r *Repo) GoogleLogin(ctx context.Context, idToken string) (User, error) {
	p, err := r.IDP.Profile(ctx, idToken)
	if err != nil {
		return User{}, fmt.Errorf("identity provider: %w", err)
	}

	u, err := r.Get(ctx, p.Email)
	if errors.Is(err, kv.ErrNotFound) {
		// password auto-generate, tidak pernah dipakai login
		hash, herr := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if herr != nil {
			return User{}, herr
		}
		role := RoleBuyer
		if r.isAdminEmail(p.Email) {
			role = RoleAdmin
		}
		u = User{
			Email:        p.Email,
			Name:         p.Name,
			PasswordHash: string(hash),
			Role:         role,
			GoogleID:     p.GoogleID,
			Avatar:       p.Picture,
			LoginMethod:  "google",
			CreatedAt:    time.Now().UTC(),
		}
		if err := r.Store.Set(ctx, Key(p.Email), u); err != nil {
			return User{}, err
		}
		return u, nil
	}
	if err != nil {
		return User{}, err
	}

	u.LastLogin = time.Now().UTC()
	if err := r.Store.Set(ctx, Key(p.Email), u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *Repo) Get(ctx context.Context, email string) (User, error) {
	return kv.GetAs[User](ctx, r.Store, Key(email))
}

func (r *Repo) UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) (User, error) {
	u, err := r.Get(ctx, email)
	if err != nil {
		return User{}, err
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	if upd.City != nil {
		u.City = *upd.City
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	u.UpdatedAt = time.Now().UTC()
	if err := r.Store.Set(ctx, Key(email), u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *Repo) ApplySeller(ctx context.Context, email string, app SellerApplication) (User, error) {
	u, err := r.Get(ctx, email)
	if err != nil {
		return User{}, err
	}
	u.Role = RoleSeller
	u.HasSellerAccount = true
	u.IsPendingSeller = false
	u.ShopName = app.ShopName
	u.ShopDescription = app.ShopDescription
	u.ShopAddress = app.Address
	u.ShopCity = app.City
	u.Phone = app.Phone
	u.IdentityType = app.IdentityType
	u.IdentityNumber = app.IdentityNumber
	u.IdentityPhoto = app.IdentityPhoto
	u.BankName = app.BankName
	u.BankAccountNumber = app.BankAccountNumber
	u.BankAccountName = app.BankAccountName
	u.SellerApprovedAt = time.Now().UTC()
	if err := r.Store.Set(ctx, Key(email), u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *Repo) SwitchRole(ctx context.Context, email, newRole string) (User, error) {
	u, err := r.Get(ctx, email)
	if err != nil {
		return User{}, err
	}
	if newRole == RoleSeller && !u.HasSellerAccount {
		return User{}, ErrNoSellerAccount
	}
	u.Role = newRole
	if err := r.Store.Set(ctx, Key(email), u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *Repo) SetPIN(ctx context.Context, email, pin string) error {
	if !pinRe.MatchString(pin) {
		return ErrInvalidPIN
	}
	u, err := r.Get(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PinHash = string(hash)
	u.HasPin = true
	return r.Store.Set(ctx, Key(email), u)
}

// VerifyPIN tidak pernah memutasi record; salah PIN cuma valid=false.
func (r *Repo) VerifyPIN(ctx context.Context, email, pin string) (bool, error) {
	u, err := r.Get(ctx, email)
	if err != nil {
		return false, err
	}
	if !u.HasPin || u.PinHash == "" {
		return false, ErrNoPIN
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PinHash), []byte(pin)) == nil, nil
}

func (r *Repo) ChangePIN(ctx context.Context, email, newPin string) error {
	return r.SetPIN(ctx, email, newPin)
}
