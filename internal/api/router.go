// ABOUTME: Route table wiring handlers to the chi router with the access gates
// ABOUTME: Public catalog reads, bearer-gated accounts and orders, admin-gated writes

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jackfgibson/rapProject/internal/auth"
)

// NewRouter builds the HTTP router for the API server.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	authenticate := auth.Authenticate(s.issuer)
	optionalAuth := auth.OptionalAuthenticate(s.issuer)
	requireAdmin := auth.RequireAdmin()

	r.Get("/health", s.handleHealth)

	r.Route("/api/users", func(r chi.Router) {
		r.With(optionalAuth).Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", s.handleMe)
			r.With(requireAdmin).Get("/", s.handleListUsers)
			r.With(auth.RequireSelfOrAdmin("username")).Get("/{username}", s.handleGetUser)
			r.With(auth.RequireSelfOrAdmin("username")).Patch("/{username}", s.handleUpdateUser)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", s.handleListProducts)
		r.Get("/search", s.handleSearchProducts)
		r.Get("/{id}", s.handleGetProduct)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, requireAdmin)
			r.Post("/", s.handleCreateProduct)
			r.Patch("/{id}", s.handleUpdateProduct)
			r.Delete("/{id}", s.handleDeleteProduct)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", s.handleListOrders)
		r.Get("/{id}", s.handleGetOrder)
		r.Post("/checkout", s.handleCheckout)
		r.With(requireAdmin).Patch("/{id}", s.handleUpdateOrder)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, http.StatusNotFound, "route not found")
	})

	return r
}
