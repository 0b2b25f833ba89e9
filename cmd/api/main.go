package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ZaryabAli-09/ecommerce-backend/internal/catalog"
	"github.com/ZaryabAli-09/ecommerce-backend/internal/config"
	"github.com/ZaryabAli-09/ecommerce-backend/internal/httpx"
	kafkax "github.com/ZaryabAli-09/ecommerce-backend/internal/kafka"
	"github.com/ZaryabAli-09/ecommerce-backend/internal/notify"
	"github.com/ZaryabAli-09/ecommerce-backend/internal/orders"
	"github.com/ZaryabAli-09/ecommerce-backend/internal/payments"
	"github.com/ZaryabAli-09/ecommerce-backend/internal/postgres"
	"github.com/ZaryabAli-09/ecommerce-backend/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for notification events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicEmail, 1024)
	prod.Start(ctx)

	svc := &orders.Service{
		Store:    &orders.Repo{DB: db},
		Catalog:  &catalog.Repo{DB: db},
		Payments: payments.NewStripeProvider(cfg.StripeKey, cfg.Currency, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL),
		Notifier: &notify.Publisher{Producer: prod, ServiceName: cfg.ServiceName},
		Redis:    rdb,
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Service: svc, JWTSecret: cfg.JWTSecret}
	oh.Register(router)
	ph := &httpx.ProductsHandler{Repo: &catalog.Repo{DB: db}}
	ph.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
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
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
