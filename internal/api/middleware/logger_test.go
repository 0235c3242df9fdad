package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestLogger_StoreFailureLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	gate, mgr := newTestGate(&stubFinder{err: errors.New("connection refused")})
	token, err := mgr.Sign("9")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/api/admin/users", func(c echo.Context) error {
		t.Fatalf("should not reach handler")
		return nil
	}, Policy(gate, adminOnly, nil, log)...)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	out := buf.String()
	if n := strings.Count(out, `"level":"error"`); n != 1 {
		t.Fatalf("expected one error-level event, got %d:\n%s", n, out)
	}
	if n := strings.Count(out, "connection refused"); n != 1 {
		t.Fatalf("expected the cause logged once, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, `"message":"request"`) {
		t.Fatalf("access log line missing:\n%s", out)
	}
}

func TestRequestLogger_UnexpectedErrorKeepsCause(t *testing.T) {
	var buf bytes.Buffer

	e := echo.New()
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/boom", func(c echo.Context) error { return errors.New("disk full") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "disk full") {
		t.Fatalf("expected error-level access log with cause, got:\n%s", out)
	}
}
