package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/literasipelajar/bookstore-backend/internal/errs"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the error taxonomy onto status codes: validation is the
// caller's fault, missing entities are their own state, store failures are
// upstream trouble.
func writeErr(w http.ResponseWriter, err error) {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Reason, "field": ve.Field})
		return
	}
	if errors.Is(err, errs.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	var pe *errs.PersistenceError
	var oe *errs.ObservationError
	if errors.As(err, &pe) || errors.As(err, &oe) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "store unavailable, try again"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
