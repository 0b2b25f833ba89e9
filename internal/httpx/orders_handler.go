package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ZaryabAli-09/ecommerce-backend/internal/auth"
	"github.com/ZaryabAli-09/ecommerce-backend/internal/orders"
)

type OrdersHandler struct {
	Service   *orders.Service
	JWTSecret string
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/order", func(r chi.Router) {
		r.Use(auth.Authenticator(h.JWTSecret))

		buyer := auth.RequireRole(auth.RoleBuyer)
		r.With(buyer).Post("/new", h.placeOrder)
		r.With(buyer).Post("/checkout-session", h.createCheckoutSession)
		r.With(buyer).Get("/confirm", h.confirmCheckout)
		r.With(buyer).Get("/my", h.listMine)

		r.With(auth.RequireRole(auth.RoleSeller)).Get("/seller", h.listSeller)
		r.With(auth.RequireRole(auth.RoleAdmin)).Get("/all", h.listAll)

		r.With(auth.RequireRole(auth.RoleSeller, auth.RoleAdmin)).Put("/{orderId}/status", h.updateStatus)
		r.With(auth.RequireRole(auth.RoleAdmin)).Delete("/{orderId}", h.deleteOrder)
	})
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	var in orders.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeData(w, http.StatusBadRequest, nil, "invalid json body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.PlaceOrder(ctx, p.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, o, "order placed")
}

func (h *OrdersHandler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	var in orders.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeData(w, http.StatusBadRequest, nil, "invalid json body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sess, err := h.Service.CreateCheckoutSession(ctx, p.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"sessionId": sess.ID, "url": sess.URL}, "")
}

func (h *OrdersHandler) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Service.ConfirmCheckout(ctx, p.ID, r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, o, "")
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeData(w, http.StatusBadRequest, nil, "invalid json body")
		return
	}

	// sellers may only touch their own orders; admins see everything
	actorSellerID := ""
	if p.Role == auth.RoleSeller {
		actorSellerID = p.ID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Transition(ctx, chi.URLParam(r, "orderId"), body.Status, actorSellerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, o, "")
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.DeleteOrder(ctx, chi.URLParam(r, "orderId")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil, "order deleted")
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	h.list(w, r, p.ID, "")
}

func (h *OrdersHandler) listSeller(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	h.list(w, r, "", p.ID)
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "", "")
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request, buyerID, sellerID string) {
	q := r.URL.Query()
	lp := orders.ListParams{
		Page:       atoiDefault(q.Get("page"), 1),
		Limit:      atoiDefault(q.Get("limit"), 10),
		Status:     q.Get("status"),
		OrderID:    q.Get("orderId"),
		DateFilter: q.Get("dateFilter"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	os, total, err := h.Service.List(ctx, lp, buyerID, sellerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"orders": os,
		"total":  total,
		"page":   lp.Page,
		"limit":  lp.Limit,
	}, "")
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
