// Package locations manages bookstore locations: map-assisted CRUD over the
// bookstores tree, fully independent of orders.
package locations

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/literasipelajar/bookstore-backend/internal/errs"
	"github.com/literasipelajar/bookstore-backend/internal/rtdb"
)

type Location struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

type Service struct {
	Store rtdb.Store
	Log   *zap.Logger
	Now   func() time.Time // nil = time.Now
}

// CreateInput carries form input; coordinates arrive as strings and are
// validated before any store call.
type CreateInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Lat     string `json:"lat"`
	Lng     string `json:"lng"`
}

// UpdateInput is a partial merge: nil fields stay untouched.
type UpdateInput struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Lat     *string `json:"lat"`
	Lng     *string `json:"lng"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Location, error) {
	name := strings.TrimSpace(in.Name)
	address := strings.TrimSpace(in.Address)
	if name == "" {
		return Location{}, &errs.ValidationError{Field: "name", Reason: "name is required"}
	}
	if address == "" {
		return Location{}, &errs.ValidationError{Field: "address", Reason: "address is required"}
	}
	lat, err := parseCoord("lat", in.Lat)
	if err != nil {
		return Location{}, err
	}
	lng, err := parseCoord("lng", in.Lng)
	if err != nil {
		return Location{}, err
	}

	now := s.now()
	fields := map[string]string{
		"name":      name,
		"address":   address,
		"lat":       formatCoord(lat),
		"lng":       formatCoord(lng),
		"createdAt": now.Format(time.RFC3339),
	}
	id, err := s.Store.Push(ctx, rtdb.TreeBookstores, fields)
	if err != nil {
		return Location{}, &errs.PersistenceError{Op: "create bookstore", Err: err}
	}

	s.logger().Info("bookstore created", zap.String("bookstore_id", id), zap.String("name", name))
	return Location{ID: id, Name: name, Address: address, Lat: lat, Lng: lng, CreatedAt: now}, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) error {
	fields := map[string]string{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return &errs.ValidationError{Field: "name", Reason: "name is required"}
		}
		fields["name"] = name
	}
	if in.Address != nil {
		address := strings.TrimSpace(*in.Address)
		if address == "" {
			return &errs.ValidationError{Field: "address", Reason: "address is required"}
		}
		fields["address"] = address
	}
	if in.Lat != nil {
		lat, err := parseCoord("lat", *in.Lat)
		if err != nil {
			return err
		}
		fields["lat"] = formatCoord(lat)
	}
	if in.Lng != nil {
		lng, err := parseCoord("lng", *in.Lng)
		if err != nil {
			return err
		}
		fields["lng"] = formatCoord(lng)
	}
	if len(fields) == 0 {
		return &errs.ValidationError{Field: "body", Reason: "no fields to update"}
	}
	fields["updatedAt"] = s.now().Format(time.RFC3339)

	err := s.Store.Merge(ctx, rtdb.TreeBookstores, id, fields)
	if errors.Is(err, rtdb.ErrNodeMissing) {
		return fmt.Errorf("bookstore %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return &errs.PersistenceError{Op: "update bookstore", Err: err}
	}
	s.logger().Info("bookstore updated", zap.String("bookstore_id", id))
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, rtdb.TreeBookstores, id); err != nil {
		return &errs.PersistenceError{Op: "delete bookstore", Err: err}
	}
	s.logger().Info("bookstore deleted", zap.String("bookstore_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Location, error) {
	rec, err := s.Store.Get(ctx, rtdb.TreeBookstores, id)
	if errors.Is(err, rtdb.ErrNodeMissing) {
		return Location{}, fmt.Errorf("bookstore %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return Location{}, &errs.ObservationError{Tree: rtdb.TreeBookstores, Err: err}
	}
	return decodeLocation(rec), nil
}

func (s *Service) List(ctx context.Context) ([]Location, error) {
	recs, err := s.Store.List(ctx, rtdb.TreeBookstores)
	if err != nil {
		return nil, &errs.ObservationError{Tree: rtdb.TreeBookstores, Err: err}
	}
	return projectLocations(recs), nil
}

// WatchLocations keeps the map screen live: full snapshot on every change,
// same cancellation contract as the order projections.
func (s *Service) WatchLocations(onUpdate func([]Location), onError func(error)) (rtdb.CancelFunc, error) {
	events, cancelStore, err := s.Store.WatchTree(context.Background(), rtdb.TreeBookstores)
	if err != nil {
		return nil, &errs.ObservationError{Tree: rtdb.TreeBookstores, Err: err}
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case <-done:
					return
				default:
				}
				if ev.Err != nil {
					s.logger().Warn("bookstores subscription failed", zap.Error(ev.Err))
					if onError != nil {
						onError(&errs.ObservationError{Tree: rtdb.TreeBookstores, Err: ev.Err})
					}
					return
				}
				onUpdate(projectLocations(ev.Records))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			cancelStore()
		})
	}, nil
}

func decodeLocation(rec rtdb.Record) Location {
	f := rec.Fields
	loc := Location{
		ID:      rec.ID,
		Name:    f["name"],
		Address: f["address"],
	}
	loc.Lat, _ = strconv.ParseFloat(f["lat"], 64)
	loc.Lng, _ = strconv.ParseFloat(f["lng"], 64)
	if t, err := time.Parse(time.RFC3339, f["createdAt"]); err == nil {
		loc.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, f["updatedAt"]); err == nil {
		loc.UpdatedAt = t
	}
	return loc
}

func projectLocations(recs []rtdb.Record) []Location {
	out := make([]Location, 0, len(recs))
	for _, rec := range recs {
		out = append(out, decodeLocation(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func parseCoord(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &errs.ValidationError{Field: field, Reason: "must be a finite number"}
	}
	return v, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
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
