package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/jobnexus/jobboard/docs"
	"github.com/jobnexus/jobboard/internal/api/handler"
	"github.com/jobnexus/jobboard/internal/api/middleware"
	"github.com/jobnexus/jobboard/internal/core/access"
	"github.com/jobnexus/jobboard/internal/core/ports"
	"github.com/jobnexus/jobboard/internal/policy"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Log    zerolog.Logger
	Policy *policy.Table
	Gate   *access.Gate
	Audit  ports.AuditSink // may be nil

	Auth      ports.AuthService
	Jobs      ports.JobService
	Companies ports.CompanyService
	Admin     ports.AdminService

	// Health probes checked by /health/ready, keyed by dependency name.
	Health map[string]handler.Pinger
	// Registry receives the HTTP metrics and backs /metrics. Nil uses the
	// default Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds the Echo instance with all routes registered. Every API
// route takes its middleware chain from the policy table; a route without a
// policy entry, or a policy entry without a route, is an error.
func NewRouter(d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))

	promCfg := echoprometheus.MiddlewareConfig{Namespace: "jobboard", Subsystem: "http"}
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		promCfg.Registerer = d.Registry
		gatherer = d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API routes, guarded by the policy table ---
	r := &routes{e: e, d: d, seen: make(map[string]struct{})}

	authH := handler.NewAuthHandler(d.Auth)
	r.add(http.MethodPost, "/api/auth/register", authH.Register)
	r.add(http.MethodPost, "/api/auth/login", authH.Login)
	r.add(http.MethodGet, "/api/auth/me", authH.Me)
	r.add(http.MethodPut, "/api/auth/profile", authH.UpdateProfile)

	jobH := handler.NewJobHandler(d.Jobs)
	r.add(http.MethodGet, "/api/jobs", jobH.List)
	r.add(http.MethodGet, "/api/jobs/:id", jobH.Get)
	r.add(http.MethodPost, "/api/jobs", jobH.Create)
	r.add(http.MethodPut, "/api/jobs/:id", jobH.Update)
	r.add(http.MethodDelete, "/api/jobs/:id", jobH.Delete)
	r.add(http.MethodPost, "/api/jobs/:id/applications", jobH.Apply)
	r.add(http.MethodGet, "/api/jobs/:id/applications", jobH.Applicants)
	r.add(http.MethodGet, "/api/applications/mine", jobH.MyApplications)

	companyH := handler.NewCompanyHandler(d.Companies)
	r.add(http.MethodGet, "/api/companies", companyH.List)
	r.add(http.MethodPost, "/api/companies", companyH.Create)

	adminH := handler.NewAdminHandler(d.Admin)
	r.add(http.MethodGet, "/api/admin/users", adminH.ListUsers)
	r.add(http.MethodPut, "/api/admin/users/:id/role", adminH.ChangeRole)

	if err := r.finish(); err != nil {
		return nil, err
	}
	return e, nil
}

type routes struct {
	e    *echo.Echo
	d    Deps
	seen map[string]struct{}
	errs []error
}

func (r *routes) add(method, path string, h echo.HandlerFunc) {
	ep := policy.Endpoint{Method: method, Path: path}
	req, ok := r.d.Policy.Endpoint(method, path)
	if !ok {
		r.errs = append(r.errs, fmt.Errorf("route %s has no policy entry", ep.Key()))
		return
	}
	r.seen[ep.Key()] = struct{}{}
	r.e.Add(method, path, h, middleware.Policy(r.d.Gate, req, r.d.Audit, r.d.Log)...)
}

func (r *routes) finish() error {
	for _, ep := range r.d.Policy.Endpoints() {
		if _, ok := r.seen[ep.Key()]; !ok {
			r.errs = append(r.errs, fmt.Errorf("policy entry %s has no route", ep.Key()))
		}
	}
	if len(r.errs) > 0 {
		return fmt.Errorf("router: %w", errors.Join(r.errs...))
	}
	return nil
}
