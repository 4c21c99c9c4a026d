package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/literasipelajar/bookstore-backend/internal/catalog"
)

type BooksHandler struct {
	Catalog *catalog.Catalog
}

func (h *BooksHandler) Register(r *chi.Mux) {
	r.Get("/books", h.list)
	r.Get("/books/{id}", h.get)
}

func (h *BooksHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.All())
}

func (h *BooksHandler) get(w http.ResponseWriter, r *http.Request) {
	book, ok := h.Catalog.FindByID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, book)
}
