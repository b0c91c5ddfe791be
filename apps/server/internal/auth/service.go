// Package auth is the auxiliary HTTP collaborator surface spec.md §6 calls
// out explicitly ("a login endpoint that verifies an external signed
// payload and returns a bearer token"): account register/login/logout
// backed by one of three interchangeable stores, issuing signed JWTs that
// the WS gateway's auth gate (C8) verifies locally via VerifyBearer,
// without a DB round trip. Grounded on the teacher's auth package
// (service.go, session.go, sqlite.go, postgres.go, factory.go, http.go).
package auth

// Service is the account/session contract consumed by the HTTP surface.
// Token issuance has moved from opaque session strings to signed JWTs
// (see jwt.go); verification for the WS gate is the free function
// VerifyBearer, which needs no Service at all. ResolveToken exists only
// for the HTTP /api/auth/me convenience endpoint: unlike VerifyBearer it
// also consults each backend's revocation set (an in-memory map for
// Manager, an auth_revocations table for the SQL backends), so a token
// surrendered via Logout stops working there immediately instead of
// waiting out its TTL.
type Service interface {
	Register(username, password string) (accountID uint64, token string, err error)
	Login(username, password string) (accountID uint64, token string, err error)
	Logout(token string)
	ResolveToken(token string) (accountID uint64, ok bool)
	Close() error
}
