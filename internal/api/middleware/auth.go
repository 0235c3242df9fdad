// Package middleware adapts the access gates to echo.
package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/jobnexus/jobboard/internal/api/metrics"
	"github.com/jobnexus/jobboard/internal/core/access"
)

// Context keys set by the gates.
const (
	// UserIDKey holds the identity id proven by the token (string).
	UserIDKey = "user_id"
	// UserKey holds the identity loaded by the role gate (*domain.User).
	UserKey = "user"
)

// Auth verifies the bearer token and stores the identity id under UserIDKey.
// It never reads the identity store.
func Auth(gate *access.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := gate.Authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				metrics.AuthDecisionsTotal.WithLabelValues(metrics.GateAuth, metrics.OutcomeUnauthenticated).Inc()
				return deny(err)
			}

			metrics.AuthDecisionsTotal.WithLabelValues(metrics.GateAuth, metrics.OutcomeAuthorized).Inc()
			c.Set(UserIDKey, claims.UserID)
			return next(c)
		}
	}
}

// deny converts a gate denial into an echo error so both echo's default
// handler and ours render {"message": ...} with the right status.
func deny(err error) error {
	d, ok := access.AsDenial(err)
	if !ok {
		return err
	}
	return echo.NewHTTPError(d.Status(), d.Message).SetInternal(d)
}
