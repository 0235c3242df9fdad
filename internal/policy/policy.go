// Package policy holds the canonical access policy of the job board. The same
// table drives the API router's middleware chains and the client route gate,
// so both tiers make the same decision for the same resource.
package policy

import (
	_ "embed"
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jobnexus/jobboard/internal/core/domain"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Level is the kind of check a resource requires.
type Level int

const (
	Public Level = iota + 1
	Authenticated
	RoleRestricted
)

func (l Level) String() string {
	switch l {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case RoleRestricted:
		return "roles"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Requirement is the predicate a caller must satisfy to reach a resource.
type Requirement struct {
	level Level
	roles []domain.Role
}

var (
	PublicAccess        = Requirement{level: Public}
	AuthenticatedAccess = Requirement{level: Authenticated}
)

// RequireRoles returns a requirement satisfied only by the listed roles. A
// single role is an exact-role check; several form a set-membership check.
func RequireRoles(roles ...domain.Role) Requirement {
	if len(roles) == 0 {
		panic("policy: RequireRoles called without roles")
	}
	return Requirement{level: RoleRestricted, roles: append([]domain.Role(nil), roles...)}
}

func (r Requirement) Level() Level { return r.level }

// Roles returns the allowed roles in declaration order, or nil when the
// requirement is not role restricted.
func (r Requirement) Roles() []domain.Role {
	return append([]domain.Role(nil), r.roles...)
}

// NeedsIdentity reports whether the caller must be authenticated.
func (r Requirement) NeedsIdentity() bool { return r.level != Public }

// NeedsRole reports whether the caller's current role has to be checked.
func (r Requirement) NeedsRole() bool { return r.level == RoleRestricted }

// Allows reports whether an identity holding role satisfies the requirement.
// Authentication itself is not checked here.
func (r Requirement) Allows(role domain.Role) bool {
	if r.level != RoleRestricted {
		return true
	}
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// DenialMessage is the text returned to a caller whose role does not satisfy r.
func (r Requirement) DenialMessage() string {
	if r.level != RoleRestricted {
		return "Access denied"
	}
	names := make([]string, len(r.roles))
	for i, role := range r.roles {
		names[i] = role.String()
	}
	return "Access denied, " + strings.Join(names, " or ") + " only"
}

// Equal reports whether both requirements accept exactly the same callers.
func (r Requirement) Equal(o Requirement) bool {
	if r.level != o.level {
		return false
	}
	for _, role := range domain.Roles {
		if r.Allows(role) != o.Allows(role) {
			return false
		}
	}
	return true
}

func (r Requirement) String() string {
	if r.level != RoleRestricted {
		return r.level.String()
	}
	names := make([]string, len(r.roles))
	for i, role := range r.roles {
		names[i] = role.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// UnmarshalYAML accepts `public`, `authenticated` or a non-empty role list.
func (r *Requirement) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		switch value.Value {
		case "public":
			*r = PublicAccess
		case "authenticated":
			*r = AuthenticatedAccess
		default:
			return fmt.Errorf("line %d: unknown requirement %q", value.Line, value.Value)
		}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		if len(names) == 0 {
			return fmt.Errorf("line %d: empty role list", value.Line)
		}
		roles := make([]domain.Role, 0, len(names))
		for _, n := range names {
			role, err := domain.ParseRole(n)
			if err != nil {
				return fmt.Errorf("line %d: %w", value.Line, err)
			}
			roles = append(roles, role)
		}
		*r = RequireRoles(roles...)
		return nil
	}
	return fmt.Errorf("line %d: requirement must be a scalar or a role list", value.Line)
}

// Endpoint is a server route and the requirement guarding it.
type Endpoint struct {
	Method  string      `yaml:"method"`
	Path    string      `yaml:"path"`
	Require Requirement `yaml:"require"`
}

// Key identifies the endpoint as "METHOD /path".
func (e Endpoint) Key() string { return endpointKey(e.Method, e.Path) }

// View is a client route and the requirement guarding it.
type View struct {
	Path    string      `yaml:"path"`
	Require Requirement `yaml:"require"`
	// API lists the endpoints the view is backed by, as "METHOD /path".
	API []string `yaml:"api"`

	segments []string
	params   int
}

// Redirects are the client locations used by the route gate.
type Redirects struct {
	Login    string `yaml:"login"`
	Fallback string `yaml:"fallback"`
	Landing  string `yaml:"landing"`
}

// Table is the loaded policy.
type Table struct {
	Redirects Redirects

	endpoints []Endpoint
	byKey     map[string]Requirement
	views     []View
}

type document struct {
	Redirects Redirects  `yaml:"redirects"`
	API       []Endpoint `yaml:"api"`
	Views     []View     `yaml:"views"`
}

// Load parses the embedded default policy.
func Load() (*Table, error) {
	return Parse(defaultPolicy)
}

// MustLoad is Load for program start-up; it panics on an invalid embedded policy.
func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Parse decodes and validates a policy document.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}

	t := &Table{
		Redirects: doc.Redirects,
		byKey:     make(map[string]Requirement, len(doc.API)),
	}

	var errs []error
	for _, ep := range doc.API {
		ep.Method = strings.ToUpper(ep.Method)
		key := endpointKey(ep.Method, ep.Path)
		if ep.Require.level == 0 {
			errs = append(errs, fmt.Errorf("endpoint %s: missing require", key))
			continue
		}
		if _, dup := t.byKey[key]; dup {
			errs = append(errs, fmt.Errorf("duplicate endpoint %s", key))
			continue
		}
		t.byKey[key] = ep.Require
		t.endpoints = append(t.endpoints, ep)
	}

	seen := make(map[string]struct{}, len(doc.Views))
	for _, v := range doc.Views {
		v.Path = cleanPath(v.Path)
		if _, dup := seen[v.Path]; dup {
			errs = append(errs, fmt.Errorf("duplicate view %s", v.Path))
			continue
		}
		seen[v.Path] = struct{}{}
		if v.Require.level == 0 {
			errs = append(errs, fmt.Errorf("view %s: missing require", v.Path))
			continue
		}
		v.segments = splitPath(v.Path)
		for _, s := range v.segments {
			if strings.HasPrefix(s, ":") {
				v.params++
			}
		}
		for _, ref := range v.API {
			method, path, ok := strings.Cut(strings.TrimSpace(ref), " ")
			if !ok {
				errs = append(errs, fmt.Errorf("view %s: malformed api reference %q", v.Path, ref))
				continue
			}
			req, ok := t.byKey[endpointKey(method, strings.TrimSpace(path))]
			if !ok {
				errs = append(errs, fmt.Errorf("view %s: unknown endpoint %q", v.Path, ref))
				continue
			}
			if !req.Equal(v.Require) {
				errs = append(errs, fmt.Errorf("view %s requires %s but endpoint %s requires %s", v.Path, v.Require, ref, req))
			}
		}
		t.views = append(t.views, v)
	}

	errs = append(errs, t.checkRedirects()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("policy: %w", errors.Join(errs...))
	}
	return t, nil
}

// checkRedirects guards against redirect loops: the login and landing views
// must be reachable anonymously and the fallback by any authenticated user.
func (t *Table) checkRedirects() []error {
	var errs []error
	r := t.Redirects
	if r.Login == "" || r.Fallback == "" || r.Landing == "" {
		return append(errs, errors.New("redirects.login, redirects.fallback and redirects.landing are required"))
	}
	if t.View(r.Login).NeedsIdentity() {
		errs = append(errs, fmt.Errorf("login view %s must be public", r.Login))
	}
	if t.View(r.Landing).NeedsIdentity() {
		errs = append(errs, fmt.Errorf("landing view %s must be public", r.Landing))
	}
	if t.View(r.Fallback).NeedsRole() {
		errs = append(errs, fmt.Errorf("fallback view %s must not be role restricted", r.Fallback))
	}
	return errs
}

// Endpoint returns the requirement registered for the route pattern.
func (t *Table) Endpoint(method, path string) (Requirement, bool) {
	req, ok := t.byKey[endpointKey(method, path)]
	return req, ok
}

// Endpoints returns every API entry in declaration order.
func (t *Table) Endpoints() []Endpoint {
	return append([]Endpoint(nil), t.endpoints...)
}

// Views returns every view entry in declaration order.
func (t *Table) Views() []View {
	return append([]View(nil), t.views...)
}

// View returns the requirement for a concrete client path. Paths that match no
// entry are public (they render the not-found view). When several patterns
// match, the one with the fewest parameters wins.
func (t *Table) View(path string) Requirement {
	segs := splitPath(cleanPath(path))
	best := -1
	for i := range t.views {
		v := &t.views[i]
		if !v.matches(segs) {
			continue
		}
		if best == -1 || v.params < t.views[best].params {
			best = i
		}
	}
	if best == -1 {
		return PublicAccess
	}
	return t.views[best].Require
}

func (v *View) matches(segs []string) bool {
	if len(segs) != len(v.segments) {
		return false
	}
	for i, s := range v.segments {
		if strings.HasPrefix(s, ":") {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if s != segs[i] {
			return false
		}
	}
	return true
}

func endpointKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// cleanPath reduces p to its canonical form: no query or fragment, a single
// leading slash, no empty, "." or ".." segments, no trailing slash, lower case.
// Client routes match case-insensitively, so every spelling of a protected
// view resolves to the same entry.
func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(path.Clean("/" + p))
}

func splitPath(p string) []string {
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}
