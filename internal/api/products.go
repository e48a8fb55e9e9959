// ABOUTME: Catalog endpoints: public list/search/get, admin-gated create/update/delete
// ABOUTME: Prices travel as decimals; partial updates use the per-field allow-list

package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/jackfgibson/rapProject/internal/store"
)

// createProductRequest is the JSON request body for POST /api/products.
type createProductRequest struct {
	Name        string           `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	OnHand      *int             `json:"on_hand"`
	Description string           `json:"description"`
}

// updateProductRequest is the JSON request body for PATCH /api/products/{id}.
// Unknown fields in the body are ignored; only this allow-list is merged.
type updateProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	OnHand      *int             `json:"on_hand"`
	Description *string          `json:"description"`
}

// handleListProducts handles GET /api/products (public).
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, products, "")
}

// handleSearchProducts handles GET /api/products/search?q=&category= (public).
// Both filters are optional and combine with AND.
func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	products, err := s.store.SearchProducts(r.Context(), query, category)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, products, "")
}

// handleGetProduct handles GET /api/products/{id} (public).
func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := s.store.GetProduct(r.Context(), id)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, product, "")
}

// handleCreateProduct handles POST /api/products (admin only).
func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name == "" || req.Price == nil || req.Category == "" || req.OnHand == nil {
		s.fail(w, http.StatusBadRequest, "name, price, category, and on_hand are required")
		return
	}

	product, err := s.store.CreateProduct(r.Context(), store.Product{
		Name:        req.Name,
		Price:       *req.Price,
		Category:    req.Category,
		OnHand:      *req.OnHand,
		Description: req.Description,
	})
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, product, "product created successfully")
}

// handleUpdateProduct handles PATCH /api/products/{id} (admin only).
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateProductRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	patch := store.ProductPatch{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		OnHand:      req.OnHand,
		Description: req.Description,
	}
	if patch == (store.ProductPatch{}) {
		s.fail(w, http.StatusBadRequest, "no valid fields to update")
		return
	}

	product, err := s.store.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, product, "product updated successfully")
}

// handleDeleteProduct handles DELETE /api/products/{id} (admin only).
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteProduct(r.Context(), id); err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil, "product deleted successfully")
}
