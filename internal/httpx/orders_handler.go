package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/literasipelajar/bookstore-backend/internal/orders"
)

type OrdersHandler struct {
	Service   *orders.Service
	Projector *orders.Projector
	Log       *zap.Logger
}

type placeOrderResp struct {
	OrderID    string        `json:"orderId"`
	Title      string        `json:"title"`
	Quantity   int           `json:"quantity"`
	TotalPrice int           `json:"totalPrice"`
	Status     orders.Status `json:"status"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/stream", h.streamOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/stream", h.streamOrder)
	r.Patch("/orders/{id}/status", h.updateStatus)
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var in orders.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Service.PlaceOrder(ctx, in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, placeOrderResp{
		OrderID:    order.ID,
		Title:      order.Title,
		Quantity:   order.Quantity,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
	})
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Service.ListOrders(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Service.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.UpdateStatus(ctx, chi.URLParam(r, "id"), orders.Status(req.Status)); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// streamOrders delivers the live projection of the whole tree as SSE, one
// full sorted snapshot per event.
func (h *OrdersHandler) streamOrders(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	updates := make(chan []orders.Order, 1)
	errc := make(chan error, 1)
	cancel, err := h.Projector.WatchOrders(
		func(list []orders.Order) { replace(updates, list) },
		func(err error) { errc <- err },
	)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer cancel()

	sseHeaders(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case <-errc:
			sseWrite(w, flusher, "error", map[string]string{"error": "store unavailable, re-subscribe"})
			return
		case list := <-updates:
			sseWrite(w, flusher, "orders", list)
		}
	}
}

// streamOrder delivers the live view of one order; a "missing" event marks
// an absent node.
func (h *OrdersHandler) streamOrder(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	type nodeUpdate struct {
		order   orders.Order
		missing bool
	}
	updates := make(chan nodeUpdate, 1)
	errc := make(chan error, 1)
	cancel, err := h.Projector.WatchOrder(chi.URLParam(r, "id"),
		func(o orders.Order) { replace(updates, nodeUpdate{order: o}) },
		func() { replace(updates, nodeUpdate{missing: true}) },
		func(err error) { errc <- err },
	)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer cancel()

	sseHeaders(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case <-errc:
			sseWrite(w, flusher, "error", map[string]string{"error": "store unavailable, re-subscribe"})
			return
		case u := <-updates:
			if u.missing {
				sseWrite(w, flusher, "missing", map[string]string{"error": "not found"})
				continue
			}
			sseWrite(w, flusher, "order", u.order)
		}
	}
}

func sseHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
}

func sseWrite(w http.ResponseWriter, flusher http.Flusher, event string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("event: " + event + "\ndata: " + string(b) + "\n\n"))
	flusher.Flush()
}

// replace keeps only the latest snapshot when the writer is slower than the
// store, matching the full-replace projection semantics.
func replace[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
