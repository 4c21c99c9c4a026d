// Package audit archives order lifecycle events into Postgres. It is the
// administrative record behind the realtime store: the store holds current
// state, the audit table holds what happened.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/literasipelajar/bookstore-backend/internal/kafka"
	"github.com/literasipelajar/bookstore-backend/internal/orders"
	"github.com/literasipelajar/bookstore-backend/internal/redisx"
)

type Service struct {
	Repo        *Repo
	Redis       *redis.Client
	ServiceName string
	Log         *zap.Logger
}

// HandleOrderEvent is the consumer handler for both order topics.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// Broken envelope: log, drop, commit. Redelivery cannot fix it.
		s.logger().Warn("dropping undecodable event", zap.Error(err))
		return nil
	}

	// dedup by event id before hitting Postgres; the insert is idempotent anyway
	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
		if n, _ := s.Redis.Exists(ctx, dkey).Result(); n > 0 {
			return nil
		}
		defer func() { _ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err() }()
	}

	entry := Entry{
		EventID:    env.EventID,
		EventType:  env.EventType,
		OccurredAt: env.OccurredAt,
		Payload:    env.Payload,
	}

	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			s.logger().Warn("dropping undecodable payload", zap.String("event_type", env.EventType), zap.Error(err))
			return nil
		}
		entry.OrderID = p.OrderID
		entry.Status = string(orders.StatusPlaced)
		entry.TotalPrice = p.TotalPrice
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			s.logger().Warn("dropping undecodable payload", zap.String("event_type", env.EventType), zap.Error(err))
			return nil
		}
		entry.OrderID = p.OrderID
		entry.Status = p.Status
	default:
		return nil // not ours
	}

	if err := s.Repo.Insert(ctx, entry); err != nil {
		return err
	}
	s.logger().Info("event archived",
		zap.String("event_id", entry.EventID),
		zap.String("order_id", entry.OrderID),
		zap.String("event_type", entry.EventType),
	)
	return nil
}

func (s *Service) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}
