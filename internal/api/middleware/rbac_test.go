package middleware

import (
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/policy"
)

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (s *recordingSink) Record(e domain.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

var (
	adminOnly = policy.RequireRoles(domain.RoleAdmin)
	staff     = policy.RequireRoles(domain.RoleEmployer, domain.RoleAdmin)
	testUsers = map[string]*domain.User{
		"1": {ID: "1", Role: domain.RoleUser},
		"5": {ID: "5", Role: domain.RoleEmployer},
		"9": {ID: "9", Role: domain.RoleAdmin},
	}
)

func withUserID(id string) func(c echo.Context) {
	return func(c echo.Context) { c.Set(UserIDKey, id) }
}

func TestRequireRoles_Allows(t *testing.T) {
	finder := &stubFinder{users: testUsers}
	gate, _ := newTestGate(finder)

	called := false
	mw := RequireRoles(gate, staff, nil, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		called = true
		user, ok := c.Get(UserKey).(*domain.User)
		if !ok || user.ID != "5" {
			t.Fatalf("identity not stored in context")
		}
		return c.NoContent(http.StatusOK)
	})

	rec := serve(t, handler, "", withUserID("5"))
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if finder.calls != 1 {
		t.Fatalf("expected exactly one identity lookup, got %d", finder.calls)
	}
}

func TestRequireRoles_Forbids(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		req    policy.Requirement
		want   string
	}{
		{"employer on admin route", "5", adminOnly, "Access denied, admin only"},
		{"user on staff route", "1", staff, "Access denied, employer or admin only"},
		{"deleted identity", "404", adminOnly, "Access denied, admin only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			gate, _ := newTestGate(&stubFinder{users: testUsers})
			handler := RequireRoles(gate, tt.req, sink, zerolog.Nop())(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})

			rec := serve(t, handler, "", withUserID(tt.userID))
			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
			if got := messageOf(t, rec); got != tt.want {
				t.Fatalf("expected message %q, got %q", tt.want, got)
			}
			if len(sink.events) != 1 || sink.events[0].Action != domain.AuditAccessDenied || sink.events[0].UserID != tt.userID {
				t.Fatalf("unexpected audit events: %+v", sink.events)
			}
		})
	}
}

func TestRequireRoles_StoreFailure(t *testing.T) {
	sink := &recordingSink{}
	gate, _ := newTestGate(&stubFinder{err: errors.New("connection refused")})
	handler := RequireRoles(gate, adminOnly, sink, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	rec := serve(t, handler, "", withUserID("9"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := messageOf(t, rec); got != "connection refused" {
		t.Fatalf("expected store error message, got %q", got)
	}
	if len(sink.events) != 1 || sink.events[0].Action != domain.AuditGateFailure {
		t.Fatalf("unexpected audit events: %+v", sink.events)
	}
}

func TestRequireRoles_WithoutAuth(t *testing.T) {
	finder := &stubFinder{users: testUsers}
	gate, _ := newTestGate(finder)
	handler := RequireRoles(gate, adminOnly, nil, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	rec := serve(t, handler, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if finder.calls != 0 {
		t.Fatalf("store must not be read without an authenticated id")
	}
}

func TestPolicy_ChainLength(t *testing.T) {
	gate, _ := newTestGate(&stubFinder{})
	if got := len(Policy(gate, policy.PublicAccess, nil, zerolog.Nop())); got != 0 {
		t.Fatalf("public: expected no middleware, got %d", got)
	}
	if got := len(Policy(gate, policy.AuthenticatedAccess, nil, zerolog.Nop())); got != 1 {
		t.Fatalf("authenticated: expected 1 middleware, got %d", got)
	}
	if got := len(Policy(gate, adminOnly, nil, zerolog.Nop())); got != 2 {
		t.Fatalf("roles: expected 2 middleware, got %d", got)
	}
}

func TestPolicy_FullChainChecksTokenBeforeRole(t *testing.T) {
	finder := &stubFinder{users: testUsers}
	gate, mgr := newTestGate(finder)
	chain := Policy(gate, adminOnly, nil, zerolog.Nop())

	var h echo.HandlerFunc = func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}

	rec := serve(t, h, "Bearer bogus", nil)
	if rec.Code != http.StatusUnauthorized || finder.calls != 0 {
		t.Fatalf("expected 401 without store access, got %d after %d lookups", rec.Code, finder.calls)
	}

	employerToken, _ := mgr.Sign("5")
	rec = serve(t, h, "Bearer "+employerToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	adminToken, _ := mgr.Sign("9")
	rec = serve(t, h, "Bearer "+adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
