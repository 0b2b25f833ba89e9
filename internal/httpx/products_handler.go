package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ZaryabAli-09/ecommerce-backend/internal/catalog"
)

// ProductsHandler serves the public storefront reads; no auth required.
type ProductsHandler struct {
	Repo *catalog.Repo
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Route("/product", func(r chi.Router) {
		r.Get("/all", h.listProducts)
		r.Get("/{productId}", h.getProduct)
	})
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.ListProducts(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, ps, "")
}

func (h *ProductsHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.GetProduct(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		writeData(w, http.StatusNotFound, nil, "product not found")
		return
	}
	writeData(w, http.StatusOK, p, "")
}
