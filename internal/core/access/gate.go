// Package access implements the server-side authentication and role
// authorization checks. It knows nothing about HTTP frameworks; the API
// middleware adapts it to echo.
package access

import (
	"context"
	"errors"
	"strings"

	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/core/ports"
	"github.com/jobnexus/jobboard/internal/policy"
)

// Gate decides whether a request may proceed.
type Gate struct {
	verifier   ports.TokenVerifier
	identities ports.IdentityFinder
}

func NewGate(verifier ports.TokenVerifier, identities ports.IdentityFinder) *Gate {
	return &Gate{verifier: verifier, identities: identities}
}

// BearerToken extracts the credential from an Authorization header value of
// the form "Bearer <token>": the second whitespace-separated field.
func BearerToken(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return "", &Denial{Kind: Unauthenticated, Message: MsgNoToken}
	}
	return fields[1], nil
}

// Authenticate verifies the credential carried by header. It never touches the
// identity store. Every verification failure yields the same message so the
// caller cannot tell a bad signature from an expired or malformed token.
func (g *Gate) Authenticate(header string) (*ports.Claims, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		return nil, &Denial{Kind: Unauthenticated, Message: MsgInvalidToken, Err: err}
	}
	return claims, nil
}

// Authorize loads the current identity for userID and checks its role against
// req. The role is always read fresh from the store, never from the token,
// because tokens are not re-issued on role change. Exactly one lookup is made.
func (g *Gate) Authorize(ctx context.Context, userID string, req policy.Requirement) (*domain.User, error) {
	user, err := g.identities.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &Denial{Kind: Forbidden, Message: req.DenialMessage(), Err: err}
		}
		return nil, &Denial{Kind: Internal, Message: err.Error(), Err: err}
	}
	if user == nil {
		return nil, &Denial{Kind: Forbidden, Message: req.DenialMessage(), Err: domain.ErrUserNotFound}
	}

	if !req.Allows(user.Role) {
		return nil, &Denial{Kind: Forbidden, Message: req.DenialMessage(), Err: domain.ErrForbidden}
	}
	return user, nil
}
