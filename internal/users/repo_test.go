package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/urtree/marketplace/internal/kv"
)

func newRepo() *Repo {
	return &Repo{
		Store:       kv.NewMemStore(),
		IDP:         MockGoogle{},
		AdminEmails: []string{"admin@urtree.com"},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	r := newRepo()

	u, err := r.Register(ctx, "budi@mail.com", "rahasia123", "Budi")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != RoleBuyer {
		t.Fatalf("expected buyer role, got %s", u.Role)
	}
	if u.PasswordHash == "" || u.PasswordHash == "rahasia123" {
		t.Fatal("password must be stored hashed")
	}

	got, err := r.Login(ctx, "budi@mail.com", "rahasia123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.Email != "budi@mail.com" {
		t.Fatalf("got %s", got.Email)
	}

	if _, err := r.Login(ctx, "budi@mail.com", "salah"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := r.Login(ctx, "ghost@mail.com", "apapun"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterDuplicatePreservesRecord(t *testing.T) {
	ctx := context.Background()
	r := newRepo()

	if _, err := r.Register(ctx, "budi@mail.com", "rahasia123", "Budi"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Register(ctx, "budi@mail.com", "lain", "Penyusup"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// record lama tidak tertimpa
	u, err := r.Get(ctx, "budi@mail.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Name != "Budi" {
		t.Fatalf("record overwritten: %s", u.Name)
	}
	if _, err := r.Login(ctx, "budi@mail.com", "rahasia123"); err != nil {
		t.Fatalf("original password must still work: %v", err)
	}
}

func TestRegisterAdminEmail(t *testing.T) {
	ctx := context.Background()
	r := newRepo()

	u, err := r.Register(ctx, "admin@urtree.com", "rahasia123", "Admin")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != RoleAdmin {
		t.Fatalf("expected admin role, got %s", u.Role)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	if _, err := r.Register(ctx, "", "pw", "x"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestGoogleLogin(t *testing.T) {
	ctx := context.Background()
	r := newRepo()

	u, err := r.GoogleLogin(ctx, "token-abc")
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if u.LoginMethod != "google" || u.GoogleID == "" {
		t.Fatalf("google profile not recorded: %+v", u)
	}

	// login kedua: user sudah ada, lastLogin terisi
	u2, err := r.GoogleLogin(ctx, "token-abc")
	if err != nil {
		t.Fatalf("second google login: %v", err)
	}
	if u2.Email != u.Email {
		t.Fatalf("expected same user, got %s", u2.Email)
	}
	if u2.LastLogin.IsZero() {
		t.Fatal("lastLogin must be set on repeat login")
	}
}

func TestUpdateProfileAllowList(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	if _, err := r.Register(ctx, "budi@mail.com", "rahasia123", "Budi"); err != nil {
		t.Fatalf("register: %v", err)
	}

	phone := "0812345678"
	u, err := r.UpdateProfile(ctx, "budi@mail.com", ProfileUpdate{Phone: &phone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Phone != phone {
		t.Fatalf("phone not updated: %s", u.Phone)
	}
	if u.Name != "Budi" {
		t.Fatalf("nil field must not be touched: %s", u.Name)
	}
	if _, err := r.Login(ctx, "budi@mail.com", "rahasia123"); err != nil {
		t.Fatalf("profile update must not touch password: %v", err)
	}
}

func TestApplySellerAndSwitchRole(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	if _, err := r.Register(ctx, "budi@mail.com", "rahasia123", "Budi"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// tanpa seller account, switch ke seller ditolak
	if _, err := r.SwitchRole(ctx, "budi@mail.com", RoleSeller); !errors.Is(err, ErrNoSellerAccount) {
		t.Fatalf("expected ErrNoSellerAccount, got %v", err)
	}

	u, err := r.ApplySeller(ctx, "budi@mail.com", SellerApplication{
		ShopName: "Toko Hijau",
		City:     "Bogor",
	})
	if err != nil {
		t.Fatalf("apply seller: %v", err)
	}
	if u.Role != RoleSeller || !u.HasSellerAccount || u.ShopName != "Toko Hijau" {
		t.Fatalf("seller onboarding incomplete: %+v", u)
	}

	u, err = r.SwitchRole(ctx, "budi@mail.com", RoleBuyer)
	if err != nil {
		t.Fatalf("switch to buyer: %v", err)
	}
	if u.Role != RoleBuyer {
		t.Fatalf("got %s", u.Role)
	}
	if _, err := r.SwitchRole(ctx, "budi@mail.com", RoleSeller); err != nil {
		t.Fatalf("switch back to seller must work after onboarding: %v", err)
	}
}

func TestPINLifecycle(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	if _, err := r.Register(ctx, "budi@mail.com", "rahasia123", "Budi"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// belum punya PIN
	if _, err := r.VerifyPIN(ctx, "budi@mail.com", "123456"); !errors.Is(err, ErrNoPIN) {
		t.Fatalf("expected ErrNoPIN, got %v", err)
	}

	// format harus 6 digit
	for _, bad := range []string{"12345", "1234567", "abcdef", "12 456"} {
		if err := r.SetPIN(ctx, "budi@mail.com", bad); !errors.Is(err, ErrInvalidPIN) {
			t.Fatalf("pin %q: expected ErrInvalidPIN, got %v", bad, err)
		}
	}

	if err := r.SetPIN(ctx, "budi@mail.com", "123456"); err != nil {
		t.Fatalf("set pin: %v", err)
	}

	valid, err := r.VerifyPIN(ctx, "budi@mail.com", "123456")
	if err != nil || !valid {
		t.Fatalf("valid=%v err=%v", valid, err)
	}
	valid, err = r.VerifyPIN(ctx, "budi@mail.com", "654321")
	if err != nil || valid {
		t.Fatalf("wrong pin must be valid=false without error, got valid=%v err=%v", valid, err)
	}

	// verify tidak memutasi record
	u, _ := r.Get(ctx, "budi@mail.com")
	if !u.HasPin || u.PinHash == "" {
		t.Fatalf("verify mutated pin state: %+v", u)
	}

	if err := r.ChangePIN(ctx, "budi@mail.com", "111111"); err != nil {
		t.Fatalf("change pin: %v", err)
	}
	valid, _ = r.VerifyPIN(ctx, "budi@mail.com", "111111")
	if !valid {
		t.Fatal("new pin must verify")
	}
	valid, _ = r.VerifyPIN(ctx, "budi@mail.com", "123456")
	if valid {
		t.Fatal("old pin must stop working")
	}
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	r := newRepo()

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Register(ctx, "budi@mail.com", "rahasia123", "Budi")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, dup := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyExists):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != n-1 {
		t.Fatalf("got %d registered, %d duplicates", ok, dup)
	}
}
