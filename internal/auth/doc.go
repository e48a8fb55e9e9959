// Package auth provides credentials and the access guard for the shop API.
//
// # Credentials
//
// Passwords are hashed with bcrypt (configurable cost); verification fails
// closed on malformed hashes. Bearer tokens are HS256-signed JWTs carrying
// {username, role, jti, iat, exp}, issued with a process-wide secret and a
// TTL between one and twenty-four hours.
//
// Tokens are stateless: verification checks signature and expiry only and
// never consults the account store, so a role change takes effect at the
// user's next login rather than mid-session.
//
// # Access guard
//
// Two gates compose as HTTP middleware:
//
//   - Authenticate: missing credential is 401, invalid or expired is 403,
//     valid tokens attach an Identity to the request context
//   - RequireAdmin / RequireSelfOrAdmin: route-specific authorization on top
//     of the authentication gate, both rejecting with 403
//
// OptionalAuthenticate serves endpoints that accept anonymous callers but
// grant extra capability to authenticated ones.
package auth
