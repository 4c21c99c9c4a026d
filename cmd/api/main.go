package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/literasipelajar/bookstore-backend/internal/catalog"
	"github.com/literasipelajar/bookstore-backend/internal/config"
	"github.com/literasipelajar/bookstore-backend/internal/httpx"
	kafkax "github.com/literasipelajar/bookstore-backend/internal/kafka"
	"github.com/literasipelajar/bookstore-backend/internal/locations"
	"github.com/literasipelajar/bookstore-backend/internal/logger"
	"github.com/literasipelajar/bookstore-backend/internal/orders"
	"github.com/literasipelajar/bookstore-backend/internal/redisx"
	"github.com/literasipelajar/bookstore-backend/internal/rtdb"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.ServiceName)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	var store rtdb.Store
	switch cfg.StoreBackend {
	case "memory":
		store = rtdb.NewMemoryStore()
	default:
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		store = rtdb.NewRedisStore(rdb)
	}

	// Kafka producers
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024, log)
	pPlaced.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, log)
	pStatus.Start(ctx)

	// Services
	books := catalog.Default()
	orderSvc := &orders.Service{
		Store:          store,
		Catalog:        books,
		PlacedProducer: pPlaced,
		StatusProducer: pStatus,
		ServiceName:    cfg.ServiceName,
		Log:            log,
	}
	projector := &orders.Projector{Store: store, Log: log}
	locationSvc := &locations.Service{Store: store, Log: log}

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.BooksHandler{Catalog: books}).Register(router)
	(&httpx.OrdersHandler{Service: orderSvc, Projector: projector, Log: log}).Register(router)
	(&httpx.LocationsHandler{Service: locationSvc, Log: log}).Register(router)
	(&httpx.MapHandler{Locations: locationSvc, Log: log}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close() // close inbox -> flush & close writer
	pStatus.Close()
	cancel() // stop producer loops
	pPlaced.WaitClosed()
	pStatus.WaitClosed()
}
