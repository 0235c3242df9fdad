package ports

import "time"

// Claims is the verified content of a session token. Only the identity id is
// trusted by the server; the role is always re-read from the identity store.
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}

// TokenIssuer signs new session tokens.
type TokenIssuer interface {
	Sign(userID string) (string, error)
}

// TokenVerifier checks a token's signature and expiry. Every failure is
// reported as domain.ErrInvalidToken.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}
