package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/urtree/marketplace/internal/admin"
	"github.com/urtree/marketplace/internal/cart"
	"github.com/urtree/marketplace/internal/catalog"
	"github.com/urtree/marketplace/internal/chat"
	"github.com/urtree/marketplace/internal/config"
	"github.com/urtree/marketplace/internal/httpx"
	kafkax "github.com/urtree/marketplace/internal/kafka"
	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/orders"
	"github.com/urtree/marketplace/internal/payment"
	"github.com/urtree/marketplace/internal/redisx"
	"github.com/urtree/marketplace/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// KV store (Postgres)
	store, err := kv.ConnectPG(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("kv connect: %v", err)
	}
	defer store.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := redisx.NewCache(rdb)

	// Kafka producers
	prodCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	prodCreated.Start()
	prodPayment := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPayment, 1024)
	prodPayment.Start()

	// Gateway
	gateway := payment.NewSnapClient(cfg.MidtransServerKey, cfg.MidtransClientKey,
		cfg.FrontendURL+"/payment-finish")
	if !gateway.Configured() {
		log.Println("warning: MIDTRANS_SERVER_KEY not configured, online checkout degrades to manual")
	}

	// Repos & services
	usersRepo := &users.Repo{Store: store, IDP: users.MockGoogle{}, AdminEmails: cfg.AdminEmails}
	catalogRepo := &catalog.Repo{Store: store}
	cartRepo := &cart.Repo{Store: store}
	ordersRepo := &orders.Repo{Store: store}
	chatRepo := &chat.Repo{Store: store}
	adminRepo := &admin.Repo{Store: store}

	checkout := &orders.CheckoutService{
		Store:    store,
		Products: catalogRepo,
		Gateway:  gateway,
		Producer: prodCreated,
		Cache:    cache,
		Service:  cfg.ServiceName,
	}
	reconciler := &payment.Reconciler{
		Store:    store,
		Products: catalogRepo,
		Cache:    cache,
		Producer: prodPayment,
		Service:  cfg.ServiceName,
	}

	router := httpx.NewRouter()

	ph := &httpx.PaymentsHandler{
		Reconciler:  reconciler,
		Repo:        ordersRepo,
		Gateway:     gateway,
		Cache:       cache,
		FrontendURL: cfg.FrontendURL,
	}
	ph.RegisterWebhooks(router)

	router.Group(func(r chi.Router) {
		r.Use(httpx.AnonKey(cfg.AnonKey))
		(&httpx.UsersHandler{Repo: usersRepo, JWTSecret: cfg.JWTSecret}).Register(r)
		(&httpx.ProductsHandler{Repo: catalogRepo}).Register(r)
		(&httpx.CartHandler{Repo: cartRepo}).Register(r)
		(&httpx.OrdersHandler{Checkout: checkout, Repo: ordersRepo, Products: catalogRepo}).Register(r)
		(&httpx.ChatsHandler{Repo: chatRepo}).Register(r)
		(&httpx.ReviewsHandler{Repo: catalogRepo}).Register(r)
		(&httpx.AdminHandler{Repo: adminRepo}).Register(r)
		ph.Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// tutup inbox -> flush & close writer
	prodCreated.Close()
	prodPayment.Close()
	prodCreated.WaitClosed()
	prodPayment.WaitClosed()
}
