package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/literasipelajar/bookstore-backend/internal/locations"
)

type LocationsHandler struct {
	Service *locations.Service
	Log     *zap.Logger
}

func (h *LocationsHandler) Register(r *chi.Mux) {
	r.Post("/bookstores", h.create)
	r.Get("/bookstores", h.list)
	r.Get("/bookstores/stream", h.stream)
	r.Get("/bookstores/{id}", h.get)
	r.Patch("/bookstores/{id}", h.update)
	r.Delete("/bookstores/{id}", h.remove)
}

func (h *LocationsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in locations.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	loc, err := h.Service.Create(ctx, in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

func (h *LocationsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Service.List(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *LocationsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	loc, err := h.Service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (h *LocationsHandler) update(w http.ResponseWriter, r *http.Request) {
	var in locations.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.Update(ctx, chi.URLParam(r, "id"), in); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"updated": chi.URLParam(r, "id")})
}

func (h *LocationsHandler) remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LocationsHandler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	updates := make(chan []locations.Location, 1)
	errc := make(chan error, 1)
	cancel, err := h.Service.WatchLocations(
		func(list []locations.Location) { replace(updates, list) },
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
			sseWrite(w, flusher, "bookstores", list)
		}
	}
}
