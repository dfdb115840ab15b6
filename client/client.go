// Package client menyediakan klien Go bertipe untuk API marketplace.
// Klien menyimpan state sesi (user aktif, cart, cache produk/pesanan/chat)
// dan menyegarkannya setelah operasi tulis.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/urtree/marketplace/internal/admin"
	"github.com/urtree/marketplace/internal/cart"
	"github.com/urtree/marketplace/internal/catalog"
	"github.com/urtree/marketplace/internal/chat"
	"github.com/urtree/marketplace/internal/orders"
	"github.com/urtree/marketplace/internal/users"
)

type Client struct {
	BaseURL string
	AnonKey string
	HTTP    *http.Client

	// State sesi, diisi oleh Login/Register dan disegarkan setelah mutasi.
	CurrentUser *users.User
	Token       string
	Cart        []cart.Item
	Products    []catalog.Product
	Orders      []orders.Order
	Chats       []chat.Conversation
}

func New(baseURL, anonKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		AnonKey: anonKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string { return fmt.Sprintf("api status %d: %s", e.Status, e.Body) }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AnonKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.AnonKey)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return &apiError{Status: resp.StatusCode, Body: e.Error}
		}
		return &apiError{Status: resp.StatusCode, Body: string(raw)}
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

// ---- auth ----

func (c *Client) Register(ctx context.Context, name, email, password string) (users.User, error) {
	var resp struct {
		User  users.User `json:"user"`
		Token string     `json:"token"`
	}
	in := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/users/register", in, &resp); err != nil {
		return users.User{}, err
	}
	c.CurrentUser = &resp.User
	c.Token = resp.Token
	return resp.User, c.refreshCart(ctx)
}

func (c *Client) Login(ctx context.Context, email, password string) (users.User, error) {
	var resp struct {
		User  users.User `json:"user"`
		Token string     `json:"token"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/users/login", in, &resp); err != nil {
		return users.User{}, err
	}
	c.CurrentUser = &resp.User
	c.Token = resp.Token
	return resp.User, c.refreshCart(ctx)
}

func (c *Client) GoogleLogin(ctx context.Context, idToken string) (users.User, error) {
	var resp struct {
		User  users.User `json:"user"`
		Token string     `json:"token"`
	}
	in := map[string]string{"idToken": idToken}
	if err := c.do(ctx, http.MethodPost, "/users/google-login", in, &resp); err != nil {
		return users.User{}, err
	}
	c.CurrentUser = &resp.User
	c.Token = resp.Token
	return resp.User, c.refreshCart(ctx)
}

// Logout membersihkan seluruh state sesi lokal.
func (c *Client) Logout() {
	c.CurrentUser = nil
	c.Token = ""
	c.Cart = nil
	c.Orders = nil
	c.Chats = nil
}

// ---- users ----

func (c *Client) GetUser(ctx context.Context, email string) (users.User, error) {
	var resp struct {
		User users.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(email), nil, &resp)
	return resp.User, err
}

func (c *Client) UpdateProfile(ctx context.Context, email string, upd users.ProfileUpdate) (users.User, error) {
	var resp struct {
		User users.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(email), upd, &resp); err != nil {
		return users.User{}, err
	}
	if c.CurrentUser != nil && c.CurrentUser.Email == email {
		c.CurrentUser = &resp.User
	}
	return resp.User, nil
}

func (c *Client) ApplySeller(ctx context.Context, email string, app users.SellerApplication) (users.User, error) {
	var resp struct {
		User users.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(email)+"/apply-seller", app, &resp); err != nil {
		return users.User{}, err
	}
	if c.CurrentUser != nil && c.CurrentUser.Email == email {
		c.CurrentUser = &resp.User
	}
	return resp.User, nil
}

func (c *Client) SwitchRole(ctx context.Context, email, newRole string) (users.User, error) {
	var resp struct {
		User users.User `json:"user"`
	}
	in := map[string]string{"newRole": newRole}
	if err := c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(email)+"/switch-role", in, &resp); err != nil {
		return users.User{}, err
	}
	if c.CurrentUser != nil && c.CurrentUser.Email == email {
		c.CurrentUser = &resp.User
	}
	return resp.User, nil
}

func (c *Client) SetPIN(ctx context.Context, email, pin string) error {
	in := map[string]string{"pin": pin}
	return c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(email)+"/set-pin", in, nil)
}

func (c *Client) VerifyPIN(ctx context.Context, email, pin string) (bool, error) {
	var resp struct {
		Valid bool `json:"valid"`
	}
	in := map[string]string{"pin": pin}
	err := c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(email)+"/verify-pin", in, &resp)
	return resp.Valid, err
}

func (c *Client) ChangePIN(ctx context.Context, email, newPin string) error {
	in := map[string]string{"newPin": newPin}
	return c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(email)+"/change-pin", in, nil)
}

// ---- products ----

func (c *Client) ListProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	path := "/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp struct {
		Products []catalog.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	c.Products = resp.Products
	return resp.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	var resp struct {
		Product catalog.Product `json:"product"`
	}
	err := c.do(ctx, http.MethodGet, "/products/"+id, nil, &resp)
	return resp.Product, err
}

func (c *Client) SellerProducts(ctx context.Context, sellerID string) ([]catalog.Product, error) {
	var resp struct {
		Products []catalog.Product `json:"products"`
	}
	err := c.do(ctx, http.MethodGet, "/products/seller/"+url.PathEscape(sellerID), nil, &resp)
	return resp.Products, err
}

func (c *Client) CreateProduct(ctx context.Context, np catalog.NewProduct) (catalog.Product, error) {
	var resp struct {
		Product catalog.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodPost, "/products", np, &resp); err != nil {
		return catalog.Product{}, err
	}
	_, _ = c.ListProducts(ctx, catalog.Filter{})
	return resp.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, upd catalog.ProductUpdate) (catalog.Product, error) {
	var resp struct {
		Product catalog.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodPut, "/products/"+id, upd, &resp); err != nil {
		return catalog.Product{}, err
	}
	_, _ = c.ListProducts(ctx, catalog.Filter{})
	return resp.Product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/products/"+id, nil, nil); err != nil {
		return err
	}
	_, _ = c.ListProducts(ctx, catalog.Filter{})
	return nil
}

// ---- cart ----

func (c *Client) refreshCart(ctx context.Context) error {
	if c.CurrentUser == nil {
		return nil
	}
	var resp struct {
		Cart []cart.Item `json:"cart"`
	}
	if err := c.do(ctx, http.MethodGet, "/cart/"+url.PathEscape(c.CurrentUser.Email), nil, &resp); err != nil {
		return err
	}
	c.Cart = resp.Cart
	return nil
}

// SaveCart menulis isi cart; item dengan quantity <= 0 dibuang dulu.
func (c *Client) SaveCart(ctx context.Context, items []cart.Item) error {
	if c.CurrentUser == nil {
		return fmt.Errorf("not logged in")
	}
	kept := make([]cart.Item, 0, len(items))
	for _, it := range items {
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	in := map[string]any{"cart": kept}
	if err := c.do(ctx, http.MethodPut, "/cart/"+url.PathEscape(c.CurrentUser.Email), in, nil); err != nil {
		return err
	}
	c.Cart = kept
	return nil
}

func (c *Client) ClearCart(ctx context.Context) error {
	if c.CurrentUser == nil {
		return fmt.Errorf("not logged in")
	}
	if err := c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(c.CurrentUser.Email), nil, nil); err != nil {
		return err
	}
	c.Cart = nil
	return nil
}

// ---- orders ----

type CheckoutResponse struct {
	Order     orders.Order `json:"order"`
	SnapToken *string      `json:"snapToken"`
	Warning   string       `json:"warning,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, req orders.CreateOrderRequest) (CheckoutResponse, error) {
	var resp CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return CheckoutResponse{}, err
	}
	// checkout sukses mengosongkan cart di sisi klien
	c.Cart = nil
	if c.CurrentUser != nil {
		_ = c.refreshBuyerOrders(ctx)
	}
	return resp, nil
}

func (c *Client) ValidateDelivery(ctx context.Context, city string, items []orders.ItemInput) error {
	in := map[string]any{"city": city, "items": items}
	return c.do(ctx, http.MethodPost, "/orders/validate-delivery", in, nil)
}

func (c *Client) refreshBuyerOrders(ctx context.Context) error {
	os, err := c.BuyerOrders(ctx, c.CurrentUser.Email)
	if err != nil {
		return err
	}
	c.Orders = os
	return nil
}

func (c *Client) BuyerOrders(ctx context.Context, buyerID string) ([]orders.Order, error) {
	var resp struct {
		Orders []orders.Order `json:"orders"`
	}
	err := c.do(ctx, http.MethodGet, "/orders/buyer/"+url.PathEscape(buyerID), nil, &resp)
	return resp.Orders, err
}

func (c *Client) SellerOrders(ctx context.Context, sellerID string) ([]orders.Order, error) {
	var resp struct {
		Orders []orders.Order `json:"orders"`
	}
	err := c.do(ctx, http.MethodGet, "/orders/seller/"+url.PathEscape(sellerID), nil, &resp)
	return resp.Orders, err
}

func (c *Client) GetOrder(ctx context.Context, id string) (orders.Order, error) {
	var resp struct {
		Order orders.Order `json:"order"`
	}
	err := c.do(ctx, http.MethodGet, "/orders/"+id, nil, &resp)
	return resp.Order, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status orders.Status) (orders.Order, error) {
	var resp struct {
		Order orders.Order `json:"order"`
	}
	in := map[string]any{"status": status}
	if err := c.do(ctx, http.MethodPut, "/orders/"+id+"/status", in, &resp); err != nil {
		return orders.Order{}, err
	}
	if c.CurrentUser != nil {
		_ = c.refreshBuyerOrders(ctx)
	}
	return resp.Order, nil
}

// ---- payments ----

type PaymentConfig struct {
	ClientKey  string `json:"clientKey"`
	IsSandbox  bool   `json:"isSandbox"`
	Configured bool   `json:"configured"`
}

func (c *Client) PaymentConfig(ctx context.Context) (PaymentConfig, error) {
	var cfg PaymentConfig
	err := c.do(ctx, http.MethodGet, "/payment-config", nil, &cfg)
	return cfg, err
}

type PaymentStatus struct {
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentType   string `json:"paymentType"`
}

func (c *Client) PaymentStatus(ctx context.Context, orderID string) (PaymentStatus, error) {
	var st PaymentStatus
	err := c.do(ctx, http.MethodGet, "/payment-status/"+orderID, nil, &st)
	return st, err
}

// ---- chat ----

func (c *Client) ListChats(ctx context.Context, userID string) ([]chat.Conversation, error) {
	var resp struct {
		Chats []chat.Conversation `json:"chats"`
	}
	if err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	c.Chats = resp.Chats
	return resp.Chats, nil
}

func (c *Client) OpenChat(ctx context.Context, buyerID, sellerID, productID string) (chat.Conversation, error) {
	var resp struct {
		Chat chat.Conversation `json:"chat"`
	}
	in := map[string]string{"buyerId": buyerID, "sellerId": sellerID, "productId": productID}
	if err := c.do(ctx, http.MethodPost, "/chats", in, &resp); err != nil {
		return chat.Conversation{}, err
	}
	if c.CurrentUser != nil {
		_, _ = c.ListChats(ctx, c.CurrentUser.Email)
	}
	return resp.Chat, nil
}

func (c *Client) ChatMessages(ctx context.Context, chatID string) ([]chat.Message, error) {
	var resp struct {
		Messages []chat.Message `json:"messages"`
	}
	err := c.do(ctx, http.MethodGet, "/chats/"+chatID+"/messages", nil, &resp)
	return resp.Messages, err
}

func (c *Client) SendMessage(ctx context.Context, chatID string, msg chat.NewMessage) (chat.Message, error) {
	var resp struct {
		Message chat.Message `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/chats/"+chatID+"/messages", msg, &resp); err != nil {
		return chat.Message{}, err
	}
	if c.CurrentUser != nil {
		_, _ = c.ListChats(ctx, c.CurrentUser.Email)
	}
	return resp.Message, nil
}

// ---- reviews ----

func (c *Client) ProductReviews(ctx context.Context, productID string) ([]catalog.Review, error) {
	var resp struct {
		Reviews []catalog.Review `json:"reviews"`
	}
	err := c.do(ctx, http.MethodGet, "/reviews/product/"+productID, nil, &resp)
	return resp.Reviews, err
}

func (c *Client) CreateReview(ctx context.Context, nr catalog.NewReview) (catalog.Review, error) {
	var resp struct {
		Review catalog.Review `json:"review"`
	}
	err := c.do(ctx, http.MethodPost, "/reviews", nr, &resp)
	return resp.Review, err
}

// ---- admin ----

func (c *Client) AdminUsers(ctx context.Context) ([]users.User, error) {
	var resp struct {
		Users []users.User `json:"users"`
	}
	err := c.do(ctx, http.MethodGet, "/admin/users", nil, &resp)
	return resp.Users, err
}

func (c *Client) AdminOrders(ctx context.Context) ([]orders.Order, error) {
	var resp struct {
		Orders []orders.Order `json:"orders"`
	}
	err := c.do(ctx, http.MethodGet, "/admin/orders", nil, &resp)
	return resp.Orders, err
}

func (c *Client) AdminStats(ctx context.Context) (admin.Stats, error) {
	var resp struct {
		Stats admin.Stats `json:"stats"`
	}
	err := c.do(ctx, http.MethodGet, "/admin/stats", nil, &resp)
	return resp.Stats, err
}
