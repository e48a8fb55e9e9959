// ABOUTME: HTTP API server: response envelope, request decoding, error mapping
// ABOUTME: Handlers live in users.go, products.go, orders.go; routing in router.go

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jackfgibson/rapProject/internal/auth"
	"github.com/jackfgibson/rapProject/internal/checkout"
	"github.com/jackfgibson/rapProject/internal/store"
)

// Server holds the dependencies for all API handlers.
type Server struct {
	store      *store.Store
	checkout   *checkout.Processor
	issuer     *auth.TokenIssuer
	bcryptCost int
	logger     *slog.Logger
}

// NewServer creates an API server over an explicitly constructed store,
// checkout processor, and token issuer. Lifecycle of all three is owned by
// the caller.
func NewServer(st *store.Store, proc *checkout.Processor, issuer *auth.TokenIssuer, bcryptCost int) *Server {
	return &Server{
		store:      st,
		checkout:   proc,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		logger:     slog.Default().With("component", "api"),
	}
}

// envelope is the JSON shape of every response body.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// respond writes a success envelope with the given status and payload.
func (s *Server) respond(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data, Message: message}); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// fail writes a failure envelope with the given status and message.
func (s *Server) fail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: false, Message: message}); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// failErr maps a domain error onto its status code and writes the failure
// envelope. Unknown errors become an opaque 500; internals never leak into
// the response body.
func (s *Server) failErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateUsername):
		s.fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInsufficientStock):
		s.fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidField), errors.Is(err, checkout.ErrInvalidRequest):
		s.fail(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("internal failure", "method", r.Method, "path", r.URL.Path, "error", err)
		s.fail(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode parses the JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// intParam parses the named chi URL parameter as an integer.
func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
