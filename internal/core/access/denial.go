package access

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a request was stopped at the gate.
type Kind int

const (
	// Unauthenticated: credential missing, malformed, tampered or expired.
	Unauthenticated Kind = iota + 1
	// Forbidden: valid identity whose current role does not satisfy the requirement,
	// or an identity that no longer exists.
	Forbidden
	// Internal: the identity store failed while authorizing.
	Internal
)

// Status maps the kind onto its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case Internal:
		return http.StatusInternalServerError
	}
	panic(fmt.Sprintf("access: unknown kind %d", int(k)))
}

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case Internal:
		return "internal"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

const (
	MsgNoToken      = "No token, authorization denied"
	MsgInvalidToken = "Token is not valid"
)

// Denial is the terminal outcome of a gate check that did not authorize the
// request. Message is what the caller sees; Err keeps the cause for logs.
type Denial struct {
	Kind    Kind
	Message string
	Err     error
}

func (d *Denial) Error() string {
	if d.Err != nil && d.Err.Error() != d.Message {
		return d.Kind.String() + ": " + d.Message + ": " + d.Err.Error()
	}
	return d.Kind.String() + ": " + d.Message
}

func (d *Denial) Unwrap() error { return d.Err }

// Status is the HTTP status code for the denial.
func (d *Denial) Status() int { return d.Kind.Status() }

// AsDenial extracts a Denial from err's chain.
func AsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
