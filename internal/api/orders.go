// ABOUTME: Order endpoints: listing scoped by role, ownership-checked fetch, checkout
// ABOUTME: Admin updates are restricted to ship address and status

package api

import (
	"net/http"

	"github.com/jackfgibson/rapProject/internal/auth"
	"github.com/jackfgibson/rapProject/internal/checkout"
	"github.com/jackfgibson/rapProject/internal/store"
)

// checkoutRequest is the JSON request body for POST /api/orders/checkout.
type checkoutRequest struct {
	ShipAddress string             `json:"ship_address"`
	Items       []checkoutItemBody `json:"items"`
}

type checkoutItemBody struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// updateOrderRequest is the JSON request body for PATCH /api/orders/{id}.
// Items and totals are immutable; only this allow-list is merged.
type updateOrderRequest struct {
	ShipAddress *string `json:"ship_address"`
	Status      *string `json:"status"`
}

// handleListOrders handles GET /api/orders: admins see the whole ledger,
// everyone else sees only their own orders.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	var orders []store.Order
	var err error
	if id.IsAdmin() {
		orders, err = s.store.ListOrders(r.Context())
	} else {
		orders, err = s.store.ListOrdersByUser(r.Context(), id.Username)
	}
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, orders, "")
}

// handleGetOrder handles GET /api/orders/{id} (owner or admin).
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := intParam(r, "id")
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := s.store.GetOrder(r.Context(), orderID)
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	id := auth.MustFromContext(r.Context())
	if !id.IsAdmin() && order.Username != id.Username {
		s.fail(w, http.StatusForbidden, "access denied")
		return
	}
	s.respond(w, http.StatusOK, order, "")
}

// handleCheckout handles POST /api/orders/checkout.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]checkout.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, checkout.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	id := auth.MustFromContext(r.Context())
	order, err := s.checkout.Process(r.Context(), id.Username, req.ShipAddress, items)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, order, "order placed successfully")
}

// handleUpdateOrder handles PATCH /api/orders/{id} (admin only).
func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := intParam(r, "id")
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateOrderRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	patch := store.OrderPatch{ShipAddress: req.ShipAddress, Status: req.Status}
	if patch == (store.OrderPatch{}) {
		s.fail(w, http.StatusBadRequest, "no valid fields to update")
		return
	}

	order, err := s.store.UpdateOrder(r.Context(), orderID, patch)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, order, "order updated successfully")
}
