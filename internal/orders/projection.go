package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/literasipelajar/bookstore-backend/internal/errs"
	"github.com/literasipelajar/bookstore-backend/internal/rtdb"
)

// Projector keeps live, typed views over the orders tree. Every update is a
// full replace built from a single atomic snapshot, defaults filled, sorted
// most recent first.
type Projector struct {
	Store rtdb.Store
	Log   *zap.Logger
	Now   func() time.Time // nil = time.Now
}

// WatchOrders subscribes to the whole orders tree. onUpdate receives the
// full sorted sequence on the initial read and on every remote change.
// After a store read error the subscription surfaces an ObservationError
// through onError and stops; it is not retried internally. The returned
// cancel is idempotent and detaches the listener immediately: no callback
// fires after it returns.
func (p *Projector) WatchOrders(onUpdate func([]Order), onError func(error)) (rtdb.CancelFunc, error) {
	events, cancelStore, err := p.Store.WatchTree(context.Background(), rtdb.TreeOrders)
	if err != nil {
		return nil, &errs.ObservationError{Tree: rtdb.TreeOrders, Err: err}
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
					p.logger().Warn("orders subscription failed", zap.Error(ev.Err))
					if onError != nil {
						onError(&errs.ObservationError{Tree: rtdb.TreeOrders, Err: ev.Err})
					}
					return
				}
				onUpdate(projectOrders(ev.Records, p.now()))
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

// WatchOrder subscribes to a single order. onMissing fires when the node
// does not (or no longer) exists. Same cancellation contract as WatchOrders.
func (p *Projector) WatchOrder(orderID string, onUpdate func(Order), onMissing func(), onError func(error)) (rtdb.CancelFunc, error) {
	events, cancelStore, err := p.Store.WatchNode(context.Background(), rtdb.TreeOrders, orderID)
	if err != nil {
		return nil, &errs.ObservationError{Tree: rtdb.TreeOrders, Err: err}
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
				switch {
				case ev.Err != nil:
					p.logger().Warn("order subscription failed",
						zap.String("order_id", orderID), zap.Error(ev.Err))
					if onError != nil {
						onError(&errs.ObservationError{Tree: rtdb.TreeOrders, Err: ev.Err})
					}
					return
				case ev.Record == nil:
					if onMissing != nil {
						onMissing()
					}
				default:
					onUpdate(decodeOrder(*ev.Record, p.now()))
				}
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

func (p *Projector) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Projector) logger() *zap.Logger {
	if p.Log != nil {
		return p.Log
	}
	return zap.NewNop()
}

// projectOrders decodes a raw snapshot and orders it by orderDate
// descending, ties broken by id so one snapshot always sorts the same way.
func projectOrders(recs []rtdb.Record, now time.Time) []Order {
	out := make([]Order, 0, len(recs))
	for _, rec := range recs {
		out = append(out, decodeOrder(rec, now))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
