package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/orders"
)

// statusCache: pengganti redis di test.
type statusCache struct{ m map[string]string }

func newStatusCache() *statusCache { return &statusCache{m: map[string]string{}} }

func (c *statusCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := c.m[key]
	return v, ok
}
func (c *statusCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.m[key] = value
}
func (c *statusCache) Exists(ctx context.Context, key string) bool {
	_, ok := c.m[key]
	return ok
}

func newPaymentsServer(t *testing.T, cache *statusCache) (*httptest.Server, *orders.Repo) {
	t.Helper()
	repo := &orders.Repo{Store: kv.NewMemStore()}
	r := chi.NewRouter()
	(&PaymentsHandler{Repo: repo, Cache: cache}).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func getStatus(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp, out
}

func TestPaymentStatusCacheAside(t *testing.T) {
	ctx := context.Background()
	cache := newStatusCache()
	srv, repo := newPaymentsServer(t, cache)

	o := orders.Order{
		ID:            "order_1",
		Status:        orders.StatusPending,
		PaymentStatus: orders.PaymentPaid,
		PaymentType:   "qris",
	}
	if err := repo.Put(ctx, o); err != nil {
		t.Fatalf("put: %v", err)
	}

	// miss: baca dari store, isi cache
	resp, body := getStatus(t, srv.URL+"/payment-status/order_1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
	if body["orderId"] != "order_1" || body["paymentStatus"] != orders.PaymentPaid ||
		body["paymentType"] != "qris" {
		t.Fatalf("got %v", body)
	}
	if len(cache.m) != 1 {
		t.Fatalf("cache not filled after miss: %v", cache.m)
	}

	// hit: record di store berubah tapi respons datang dari cache
	o.PaymentStatus = orders.PaymentFailed
	if err := repo.Put(ctx, o); err != nil {
		t.Fatalf("put: %v", err)
	}
	resp, body = getStatus(t, srv.URL+"/payment-status/order_1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
	if body["paymentStatus"] != orders.PaymentPaid {
		t.Fatalf("expected cached payload, got %v", body)
	}
}

func TestPaymentStatusPrefilledCache(t *testing.T) {
	cache := newStatusCache()
	srv, _ := newPaymentsServer(t, cache)

	// payload yang ditulis checkout/webhook harus dilayani apa adanya,
	// tanpa order di store
	cache.m["payment_status:order_2"] = `{"orderId":"order_2","status":"pending_payment","paymentStatus":"pending","paymentType":"bank_transfer"}`

	resp, body := getStatus(t, srv.URL+"/payment-status/order_2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
	if body["paymentType"] != "bank_transfer" {
		t.Fatalf("got %v", body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q", ct)
	}
}

func TestPaymentStatusNotFound(t *testing.T) {
	srv, _ := newPaymentsServer(t, newStatusCache())

	resp, body := getStatus(t, srv.URL+"/payment-status/order_missing")
	if resp.StatusCode != http.StatusNotFound || body["error"] != "order not found" {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
}
