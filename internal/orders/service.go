package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/literasipelajar/bookstore-backend/internal/catalog"
	"github.com/literasipelajar/bookstore-backend/internal/errs"
	kafkax "github.com/literasipelajar/bookstore-backend/internal/kafka"
	"github.com/literasipelajar/bookstore-backend/internal/rtdb"
)

// Service is the order lifecycle manager: it validates purchase intent,
// derives a durable order record and persists it to the orders tree.
type Service struct {
	Store   rtdb.Store
	Catalog *catalog.Catalog

	// Producers are optional; a nil producer skips event publishing.
	PlacedProducer *kafkax.Producer
	StatusProducer *kafkax.Producer

	ServiceName string
	Log         *zap.Logger
	Now         func() time.Time // nil = time.Now
}

type PlaceOrderInput struct {
	BookID        string `json:"bookId"`
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"paymentMethod"`
	Address       string `json:"address"`
}

// PlaceOrder validates the input, computes the total from the catalog unit
// price and appends a new record to the orders tree. The store assigns the
// identifier. Exactly one record is created on success; none on failure.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (Order, error) {
	if in.Quantity < 1 {
		return Order{}, &errs.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	switch PaymentMethod(in.PaymentMethod) {
	case PaymentQR, PaymentCOD:
	case "":
		return Order{}, &errs.ValidationError{Field: "paymentMethod", Reason: "payment method is required"}
	default:
		return Order{}, &errs.ValidationError{Field: "paymentMethod", Reason: "must be QR or COD"}
	}
	address := strings.TrimSpace(in.Address)
	if len(address) < 10 {
		return Order{}, &errs.ValidationError{Field: "address", Reason: "shipping address must be at least 10 characters"}
	}

	book, ok := s.Catalog.FindByID(in.BookID)
	if !ok {
		return Order{}, fmt.Errorf("book %s: %w", in.BookID, errs.ErrNotFound)
	}

	now := s.now()
	order := Order{
		BookID:          book.ID,
		Title:           book.Title,
		Quantity:        in.Quantity,
		TotalPrice:      book.Price * in.Quantity,
		PaymentMethod:   PaymentMethod(in.PaymentMethod),
		ShippingAddress: address,
		OrderDate:       now,
		Status:          StatusPlaced,
		// Pseudo identity, not an authenticated one.
		UserID: fmt.Sprintf("anonymous_user_%d", now.UnixMilli()),
	}

	id, err := s.Store.Push(ctx, rtdb.TreeOrders, order.fields())
	if err != nil {
		return Order{}, &errs.PersistenceError{Op: "create order", Err: err}
	}
	order.ID = id

	s.publish(s.PlacedProducer, EventOrderPlaced, id, OrderPlacedPayload{
		OrderID:         id,
		BookID:          order.BookID,
		Title:           order.Title,
		Quantity:        order.Quantity,
		TotalPrice:      order.TotalPrice,
		PaymentMethod:   string(order.PaymentMethod),
		ShippingAddress: order.ShippingAddress,
		UserID:          order.UserID,
	})

	s.logger().Info("order placed",
		zap.String("order_id", id),
		zap.String("book_id", order.BookID),
		zap.Int("total_price", order.TotalPrice),
	)
	return order, nil
}

// UpdateStatus is the administrative mutation: only the status field is
// merged, everything else (the total included) stays as created.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	if status == "" {
		return &errs.ValidationError{Field: "status", Reason: "status is required"}
	}
	err := s.Store.Merge(ctx, rtdb.TreeOrders, orderID, map[string]string{"status": string(status)})
	if errors.Is(err, rtdb.ErrNodeMissing) {
		return fmt.Errorf("order %s: %w", orderID, errs.ErrNotFound)
	}
	if err != nil {
		return &errs.PersistenceError{Op: "update status", Err: err}
	}

	s.publish(s.StatusProducer, EventOrderStatusChanged, orderID, OrderStatusChangedPayload{
		OrderID: orderID,
		Status:  string(status),
	})

	s.logger().Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", string(status)),
	)
	return nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (Order, error) {
	rec, err := s.Store.Get(ctx, rtdb.TreeOrders, orderID)
	if errors.Is(err, rtdb.ErrNodeMissing) {
		return Order{}, fmt.Errorf("order %s: %w", orderID, errs.ErrNotFound)
	}
	if err != nil {
		return Order{}, &errs.ObservationError{Tree: rtdb.TreeOrders, Err: err}
	}
	return decodeOrder(rec, s.now()), nil
}

// ListOrders is the one-shot form of the realtime projection: current
// snapshot, defaults filled, most recent first.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	recs, err := s.Store.List(ctx, rtdb.TreeOrders)
	if err != nil {
		return nil, &errs.ObservationError{Tree: rtdb.TreeOrders, Err: err}
	}
	return projectOrders(recs, s.now()), nil
}

func (s *Service) publish(p *kafkax.Producer, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}
