// ABOUTME: Account endpoints: register, login, profile fetch and update, admin listing
// ABOUTME: Passwords are hashed before they reach the store; reads are always redacted

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jackfgibson/rapProject/internal/auth"
	"github.com/jackfgibson/rapProject/internal/store"
)

// registerRequest is the JSON request body for POST /api/users/register.
type registerRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	First         string `json:"first"`
	Last          string `json:"last"`
	StreetAddress string `json:"street_address"`
	Role          string `json:"role,omitempty"`
}

// loginRequest is the JSON request body for POST /api/users/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionResponse is returned by register and login: the account plus a fresh
// bearer token.
type sessionResponse struct {
	User  store.User `json:"user"`
	Token string     `json:"token"`
}

// updateUserRequest is the JSON request body for PATCH /api/users/{username}.
// Pointer fields distinguish "absent" from "set to empty"; anything outside
// this allow-list is ignored.
type updateUserRequest struct {
	Email         *string `json:"email"`
	First         *string `json:"first"`
	Last          *string `json:"last"`
	StreetAddress *string `json:"street_address"`
	Password      *string `json:"password"`
	Role          *string `json:"role"`
}

// handleRegister handles POST /api/users/register. Anonymous registrations are
// always plain users; an authenticated admin may set the role.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" || req.First == "" || req.Last == "" {
		s.fail(w, http.StatusBadRequest, "username, email, password, first name, and last name are required")
		return
	}

	role := store.RoleUser
	if req.Role != "" {
		id := auth.FromContext(r.Context())
		if id == nil || !id.IsAdmin() {
			s.fail(w, http.StatusForbidden, "only admins may set a role")
			return
		}
		role = req.Role
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	user, err := s.store.CreateUser(r.Context(), store.User{
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  hash,
		First:         req.First,
		Last:          req.Last,
		StreetAddress: req.StreetAddress,
		Role:          role,
	})
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	token, err := s.issuer.Issue(user.Username, user.Role)
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	s.respond(w, http.StatusCreated, sessionResponse{User: user, Token: token}, "user registered successfully")
}

// handleLogin handles POST /api/users/login. Unknown usernames and wrong
// passwords produce the same response, and the unknown-username path burns a
// dummy bcrypt comparison so timing does not differ either.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Username == "" || req.Password == "" {
		s.fail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := s.store.PasswordHashFor(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.CompareDummy(req.Password)
			s.fail(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.failErr(w, r, err)
		return
	}

	if !auth.CheckPassword(req.Password, hash) {
		s.fail(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	user, err := s.store.GetUser(r.Context(), req.Username)
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	token, err := s.issuer.Issue(user.Username, user.Role)
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, sessionResponse{User: user, Token: token}, "login successful")
}

// handleMe handles GET /api/users/me.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	user, err := s.store.GetUser(r.Context(), id.Username)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, user, "")
}

// handleListUsers handles GET /api/users (admin only).
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, users, "")
}

// handleGetUser handles GET /api/users/{username} (self or admin).
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, user, "")
}

// handleUpdateUser handles PATCH /api/users/{username} (self or admin). Role
// changes require the admin role on top of the self-or-admin gate.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	id := auth.MustFromContext(r.Context())
	if req.Role != nil && !id.IsAdmin() {
		s.fail(w, http.StatusForbidden, "only admins may change roles")
		return
	}

	patch := store.UserPatch{
		Email:         req.Email,
		First:         req.First,
		Last:          req.Last,
		StreetAddress: req.StreetAddress,
		Role:          req.Role,
	}

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			s.failErr(w, r, err)
			return
		}
		patch.PasswordHash = &hash
	}

	if patch == (store.UserPatch{}) {
		s.fail(w, http.StatusBadRequest, "no valid fields to update")
		return
	}

	user, err := s.store.UpdateUser(r.Context(), chi.URLParam(r, "username"), patch)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, user, "user updated successfully")
}
