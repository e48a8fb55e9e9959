// ABOUTME: Account operations on the store: create, lookup, update, list
// ABOUTME: Redacts password hashes on every read and guards username uniqueness

package store

import (
	"context"
	"fmt"
	"slices"
)

// UserPatch is the allow-list of user fields that may change after creation.
// Nil fields are left untouched. PasswordHash must already be hashed by the
// caller; the store never sees clear-text passwords.
type UserPatch struct {
	Email         *string
	First         *string
	Last          *string
	StreetAddress *string
	PasswordHash  *string
	Role          *string
}

// CreateUser inserts a new user. The uniqueness check and the insert happen
// under one critical section, so two concurrent registrations for the same
// username cannot both succeed. Returns the created user with the password
// hash redacted.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	if u.Username == "" {
		return User{}, fmt.Errorf("%w: username is required", ErrInvalidField)
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return User{}, fmt.Errorf("%w: role must be %q or %q", ErrInvalidField, RoleUser, RoleAdmin)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUser(u.Username) >= 0 {
		return User{}, ErrDuplicateUsername
	}

	candidate := s.state
	candidate.Users = append(slices.Clone(s.state.Users), u)
	if err := s.commit(ctx, candidate); err != nil {
		return User{}, err
	}

	s.logger.Info("user created", "username", u.Username, "role", u.Role)
	return u.redacted(), nil
}

// GetUser returns the user with the given username, password hash redacted.
func (s *Store) GetUser(ctx context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findUser(username)
	if idx < 0 {
		return User{}, ErrNotFound
	}
	return s.state.Users[idx].redacted(), nil
}

// PasswordHashFor returns the stored password hash for login verification.
// This is the only read that exposes the hash.
func (s *Store) PasswordHashFor(ctx context.Context, username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findUser(username)
	if idx < 0 {
		return "", ErrNotFound
	}
	return s.state.Users[idx].PasswordHash, nil
}

// UpdateUser applies the patch to an existing user and returns the updated
// record with the password hash redacted.
func (s *Store) UpdateUser(ctx context.Context, username string, patch UserPatch) (User, error) {
	if patch.Role != nil && *patch.Role != RoleUser && *patch.Role != RoleAdmin {
		return User{}, fmt.Errorf("%w: role must be %q or %q", ErrInvalidField, RoleUser, RoleAdmin)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUser(username)
	if idx < 0 {
		return User{}, ErrNotFound
	}

	users := slices.Clone(s.state.Users)
	u := users[idx]
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.First != nil {
		u.First = *patch.First
	}
	if patch.Last != nil {
		u.Last = *patch.Last
	}
	if patch.StreetAddress != nil {
		u.StreetAddress = *patch.StreetAddress
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	users[idx] = u

	candidate := s.state
	candidate.Users = users
	if err := s.commit(ctx, candidate); err != nil {
		return User{}, err
	}

	return u.redacted(), nil
}

// ListUsers returns all users, password hashes redacted.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, len(s.state.Users))
	for i, u := range s.state.Users {
		users[i] = u.redacted()
	}
	return users, nil
}

// findUser returns the index of the user with the given username, or -1.
// Callers must hold at least the read lock.
func (s *Store) findUser(username string) int {
	for i, u := range s.state.Users {
		if u.Username == username {
			return i
		}
	}
	return -1
}
