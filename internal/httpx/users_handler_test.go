package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/users"
)

func newUsersServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo := &users.Repo{
		Store:       kv.NewMemStore(),
		IDP:         users.MockGoogle{},
		AdminEmails: []string{"admin@urtree.com"},
	}
	r := chi.NewRouter()
	(&UsersHandler{Repo: repo, JWTSecret: "test-secret"}).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp, out
}

func TestRegisterEndpoint(t *testing.T) {
	srv := newUsersServer(t)

	resp, body := postJSON(t, srv.URL+"/users/register",
		`{"email":"budi@mail.com","password":"rahasia123","name":"Budi"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
	if body["token"] == "" || body["token"] == nil {
		t.Fatal("expected jwt token in response")
	}
	u, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("missing user: %v", body)
	}
	if u["email"] != "budi@mail.com" || u["role"] != "buyer" {
		t.Fatalf("got user %v", u)
	}
	if _, leaked := u["passwordHash"]; leaked {
		t.Fatal("password hash leaked in response")
	}

	// duplikat
	resp, body = postJSON(t, srv.URL+"/users/register",
		`{"email":"budi@mail.com","password":"lain","name":"Penyusup"}`)
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "user already exists" {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
}

func TestLoginEndpoint(t *testing.T) {
	srv := newUsersServer(t)
	postJSON(t, srv.URL+"/users/register",
		`{"email":"budi@mail.com","password":"rahasia123","name":"Budi"}`)

	resp, body := postJSON(t, srv.URL+"/users/login",
		`{"email":"budi@mail.com","password":"rahasia123"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
	tok, _ := body["token"].(string)
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("expected jwt, got %q", tok)
	}

	resp, body = postJSON(t, srv.URL+"/users/login",
		`{"email":"budi@mail.com","password":"salah"}`)
	if resp.StatusCode != http.StatusUnauthorized || body["error"] != "invalid credentials" {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
}

func TestVerifyPINEndpoint(t *testing.T) {
	srv := newUsersServer(t)
	postJSON(t, srv.URL+"/users/register",
		`{"email":"budi@mail.com","password":"rahasia123","name":"Budi"}`)

	// belum set PIN
	resp, body := postJSON(t, srv.URL+"/users/budi@mail.com/verify-pin", `{"pin":"123456"}`)
	if resp.StatusCode != http.StatusBadRequest || body["valid"] != false {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}

	resp, _ = postJSON(t, srv.URL+"/users/budi@mail.com/set-pin", `{"pin":"12345"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("5-digit pin accepted: %d", resp.StatusCode)
	}
	resp, _ = postJSON(t, srv.URL+"/users/budi@mail.com/set-pin", `{"pin":"123456"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set pin: %d", resp.StatusCode)
	}

	resp, body = postJSON(t, srv.URL+"/users/budi@mail.com/verify-pin", `{"pin":"123456"}`)
	if resp.StatusCode != http.StatusOK || body["valid"] != true {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
	resp, body = postJSON(t, srv.URL+"/users/budi@mail.com/verify-pin", `{"pin":"654321"}`)
	if resp.StatusCode != http.StatusOK || body["valid"] != false {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
}

func TestAnonKeyMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(AnonKey("public-key"))
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing key must be 401, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/ping", nil)
	req.Header.Set("Authorization", "Bearer public-key")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get with key: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid key rejected: %d", resp.StatusCode)
	}
}
