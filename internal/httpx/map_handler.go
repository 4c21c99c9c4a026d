package httpx

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/literasipelajar/bookstore-backend/internal/locations"
	"github.com/literasipelajar/bookstore-backend/internal/mapbridge"
)

// MapHandler takes the embedded map document's post-messages. Malformed
// messages are logged and dropped with 204, never surfaced as an error.
type MapHandler struct {
	Locations *locations.Service
	Log       *zap.Logger
}

func (h *MapHandler) Register(r *chi.Mux) {
	r.Post("/map/messages", h.handleMessage)
}

func (h *MapHandler) handleMessage(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	msg, err := mapbridge.Decode(raw)
	if err != nil {
		h.Log.Warn("dropping map message", zap.Error(err))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	switch msg.Type {
	case mapbridge.TypeDelete:
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.Locations.Delete(ctx, msg.ID); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": msg.ID})
	case mapbridge.TypeEdit:
		// navigation intent; the client opens its edit form for this id
		writeJSON(w, http.StatusOK, map[string]string{"edit": msg.ID})
	case mapbridge.TypeCoordinates, mapbridge.TypeInitialLocation:
		writeJSON(w, http.StatusOK, map[string]float64{"lat": *msg.Lat, "lng": *msg.Lng})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
