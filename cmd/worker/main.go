package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/urtree/marketplace/internal/chat"
	"github.com/urtree/marketplace/internal/config"
	kafkax "github.com/urtree/marketplace/internal/kafka"
	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/notify"
	"github.com/urtree/marketplace/internal/orders"
	"github.com/urtree/marketplace/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	group := getenv("NOTIFY_GROUP", "notify-worker")
	workers, _ := strconv.Atoi(getenv("NOTIFY_WORKERS", "4"))
	if workers <= 0 {
		workers = 4
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := kv.ConnectPG(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("kv connect: %v", err)
	}
	defer store.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Chats:       &chat.Repo{Store: store},
		Cache:       redisx.NewCache(rdb),
		ServiceName: cfg.ServiceName,
	}

	consumer := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderPayment, workers)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("shutting down...")
		cancel()
	}()

	log.Printf("notify worker started group=%s topic=%s workers=%d", group, orders.TopicOrderPayment, workers)
	if err := consumer.Start(ctx, svc.HandlePaymentEvent); err != nil && err != context.Canceled {
		log.Fatalf("consumer: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
