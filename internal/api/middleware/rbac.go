package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jobnexus/jobboard/internal/api/metrics"
	"github.com/jobnexus/jobboard/internal/core/access"
	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/core/ports"
	"github.com/jobnexus/jobboard/internal/policy"
)

// RequireRoles loads the caller's current identity and checks its role against
// req. It must run after Auth. On success the identity is stored under UserKey.
// audit may be nil.
func RequireRoles(gate *access.Gate, req policy.Requirement, audit ports.AuditSink, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(UserIDKey).(string)
			if userID == "" {
				// Auth did not run; treat as a missing credential.
				metrics.AuthDecisionsTotal.WithLabelValues(metrics.GateRole, metrics.OutcomeUnauthenticated).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, access.MsgNoToken)
			}

			user, err := gate.Authorize(c.Request().Context(), userID, req)
			if err != nil {
				d, ok := access.AsDenial(err)
				if !ok {
					return err
				}
				record(c, audit, userID, d)
				switch d.Kind {
				case access.Forbidden:
					metrics.AuthDecisionsTotal.WithLabelValues(metrics.GateRole, metrics.OutcomeForbidden).Inc()
					log.Debug().Str("user_id", userID).Str("path", c.Path()).Msg("role check denied")
				case access.Internal:
					metrics.AuthDecisionsTotal.WithLabelValues(metrics.GateRole, metrics.OutcomeInternal).Inc()
					log.Error().Err(d.Err).Str("user_id", userID).Str("path", c.Path()).Msg("identity lookup failed")
				case access.Unauthenticated:
					metrics.AuthDecisionsTotal.WithLabelValues(metrics.GateRole, metrics.OutcomeUnauthenticated).Inc()
				}
				return deny(d)
			}

			metrics.AuthDecisionsTotal.WithLabelValues(metrics.GateRole, metrics.OutcomeAuthorized).Inc()
			c.Set(UserKey, user)
			return next(c)
		}
	}
}

func record(c echo.Context, audit ports.AuditSink, userID string, d *access.Denial) {
	if audit == nil {
		return
	}
	action := domain.AuditAccessDenied
	if d.Kind == access.Internal {
		action = domain.AuditGateFailure
	}
	audit.Record(domain.AuditEvent{
		Action:    action,
		UserID:    userID,
		Method:    c.Request().Method,
		Path:      c.Path(),
		Detail:    d.Message,
		Timestamp: time.Now().UTC(),
	})
}

// Policy returns the middleware chain enforcing req: nothing for public
// resources, Auth for authenticated ones, Auth then RequireRoles otherwise.
func Policy(gate *access.Gate, req policy.Requirement, audit ports.AuditSink, log zerolog.Logger) []echo.MiddlewareFunc {
	switch req.Level() {
	case policy.Public:
		return nil
	case policy.Authenticated:
		return []echo.MiddlewareFunc{Auth(gate)}
	case policy.RoleRestricted:
		return []echo.MiddlewareFunc{Auth(gate), RequireRoles(gate, req, audit, log)}
	}
	panic("middleware: requirement without a level: " + req.String())
}
