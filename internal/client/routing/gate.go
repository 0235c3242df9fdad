// Package routing decides, for a client path, whether to render it, wait for
// the session to resolve, or redirect elsewhere. It reads the same policy
// table as the API router.
package routing

import (
	"fmt"

	"github.com/jobnexus/jobboard/internal/client/session"
	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/policy"
)

// Outcome is what the client does with a path.
type Outcome int

const (
	// Wait means the session is still loading; render neither the view nor a redirect.
	Wait Outcome = iota + 1
	Render
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Decision is the result of resolving a path. Location is set for Redirect.
type Decision struct {
	Outcome  Outcome
	Location string
}

func (d Decision) String() string {
	if d.Outcome == Redirect {
		return "redirect " + d.Location
	}
	return d.Outcome.String()
}

// SessionView is the read side of the session store.
type SessionView interface {
	Snapshot() session.State
}

type Gate struct {
	table   *policy.Table
	session SessionView
}

func NewGate(table *policy.Table, sess SessionView) *Gate {
	return &Gate{table: table, session: sess}
}

// Resolve decides what to do with path given the current session.
func (g *Gate) Resolve(path string) Decision {
	req := g.table.View(path)
	if !req.NeedsIdentity() {
		return Decision{Outcome: Render}
	}

	st := g.session.Snapshot()
	switch {
	case st.Loading:
		return Decision{Outcome: Wait}
	case !st.Authenticated():
		return Decision{Outcome: Redirect, Location: g.table.Redirects.Login}
	case !req.Allows(st.Role()):
		return Decision{Outcome: Redirect, Location: g.table.Redirects.Fallback}
	}
	return Decision{Outcome: Render}
}

// Home is where the current session lands after login.
func (g *Gate) Home() Decision {
	st := g.session.Snapshot()
	switch {
	case st.Loading:
		return Decision{Outcome: Wait}
	case !st.Authenticated():
		return Decision{Outcome: Redirect, Location: g.table.Redirects.Login}
	}
	return Decision{Outcome: Redirect, Location: Dashboard(st.Role())}
}

// Dashboard returns the landing dashboard for role.
func Dashboard(role domain.Role) string {
	switch role {
	case domain.RoleUser:
		return "/dashboard"
	case domain.RoleEmployer:
		return "/dashboard/recruiter"
	case domain.RoleAdmin:
		return "/dashboard/admin"
	}
	panic(fmt.Sprintf("routing: unhandled role %q", role))
}
