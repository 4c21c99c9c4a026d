package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/literasipelajar/bookstore-backend/internal/audit"
	"github.com/literasipelajar/bookstore-backend/internal/config"
	kafkax "github.com/literasipelajar/bookstore-backend/internal/kafka"
	"github.com/literasipelajar/bookstore-backend/internal/logger"
	"github.com/literasipelajar/bookstore-backend/internal/orders"
	"github.com/literasipelajar/bookstore-backend/internal/postgres"
	"github.com/literasipelajar/bookstore-backend/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.ServiceName + "-audit")
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	repo := &audit.Repo{DB: db}
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("ensure schema", zap.Error(err))
	}

	// Redis (event dedup)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &audit.Service{
		Repo:        repo,
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-audit",
		Log:         log,
	}

	// One consumer per topic, both feeding the same handler.
	topics := []string{orders.TopicOrderPlaced, orders.TopicOrderStatusChanged}
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, topic, cfg.AuditWorkers, log)
		go func(topic string) {
			log.Info("audit consumer started",
				zap.String("group", cfg.AuditGroup),
				zap.String("topic", topic),
				zap.Int("workers", cfg.AuditWorkers),
			)
			if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
				log.Error("consumer exit", zap.String("topic", topic), zap.Error(err))
				cancel()
			}
		}(topic)
	}

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info("shutting down consumers...")
	case <-ctx.Done():
	}
	cancel()
}
