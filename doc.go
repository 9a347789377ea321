// Package accounts provides user account management and session
// authentication: registration, credential login, JWT access tokens, and
// hashed single-slot refresh tokens.
//
// Session lifecycle:
//   - Register derives a unique lowercase username from the user's name,
//     appending a numeric suffix on collision, and enforces case-insensitive
//     email uniqueness.
//   - Login verifies credentials with bcrypt and mints a signed access token
//     plus an opaque refresh token. Only the SHA-256 hash of the refresh
//     token is stored; the plaintext is returned exactly once. Each account
//     holds a single refresh slot, so a new login displaces the previous
//     token.
//   - RefreshToken exchanges a live refresh token for a fresh access token
//     without rotating the stored secret. RevokeRefreshToken clears the slot.
//
// Storage is Bun-backed; repositories come from the shared repository
// manager and migrations ship embedded for the sqlite and postgres
// dialects. The middleware/jwtware subpackage verifies access tokens on
// protected routes and propagates claims through the request context.
package accounts
