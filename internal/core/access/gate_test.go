package access

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/core/ports"
	"github.com/jobnexus/jobboard/internal/policy"
)

type stubVerifier struct {
	claims *ports.Claims
	err    error
	calls  int
}

func (v *stubVerifier) Verify(string) (*ports.Claims, error) {
	v.calls++
	return v.claims, v.err
}

type stubFinder struct {
	users map[string]*domain.User
	err   error
	calls int
}

func (f *stubFinder) FindByID(_ context.Context, id string) (*domain.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

var (
	adminOnly = policy.RequireRoles(domain.RoleAdmin)
	staff     = policy.RequireRoles(domain.RoleEmployer, domain.RoleAdmin)
)

func requireDenial(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	d, ok := AsDenial(err)
	require.True(t, ok, "expected a Denial, got %v", err)
	assert.Equal(t, kind, d.Kind)
	assert.Equal(t, msg, d.Message)
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	tok, err = BearerToken("  Bearer   abc  ")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	for _, header := range []string{"", "Bearer", "Bearer   ", "abc"} {
		_, err := BearerToken(header)
		requireDenial(t, err, Unauthenticated, MsgNoToken)
	}
}

func TestAuthenticate_MissingTokenSkipsVerification(t *testing.T) {
	v := &stubVerifier{claims: &ports.Claims{UserID: "1"}}
	g := NewGate(v, &stubFinder{})

	_, err := g.Authenticate("")
	requireDenial(t, err, Unauthenticated, "No token, authorization denied")
	assert.Zero(t, v.calls)
}

func TestAuthenticate_InvalidTokenUniformMessage(t *testing.T) {
	causes := []error{
		errors.New("token is expired"),
		errors.New("signature is invalid"),
		errors.New("token is malformed"),
	}
	for _, cause := range causes {
		f := &stubFinder{}
		g := NewGate(&stubVerifier{err: cause}, f)

		_, err := g.Authenticate("Bearer whatever")
		requireDenial(t, err, Unauthenticated, "Token is not valid")
		assert.ErrorIs(t, err, cause)
		assert.Zero(t, f.calls, "authentication must not hit the store")
	}
}

func TestAuthenticate_Success(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	f := &stubFinder{}
	g := NewGate(&stubVerifier{claims: &ports.Claims{UserID: "5", ExpiresAt: exp}}, f)

	claims, err := g.Authenticate("Bearer good")
	require.NoError(t, err)
	assert.Equal(t, "5", claims.UserID)
	assert.Zero(t, f.calls)
}

func TestAuthorize(t *testing.T) {
	users := map[string]*domain.User{
		"1": {ID: "1", Role: domain.RoleUser},
		"5": {ID: "5", Role: domain.RoleEmployer},
		"9": {ID: "9", Role: domain.RoleAdmin},
	}

	tests := []struct {
		name    string
		userID  string
		req     policy.Requirement
		wantErr bool
		kind    Kind
		msg     string
	}{
		{name: "admin on admin route", userID: "9", req: adminOnly},
		{name: "employer on staff route", userID: "5", req: staff},
		{name: "admin on staff route", userID: "9", req: staff},
		{name: "employer on admin route", userID: "5", req: adminOnly, wantErr: true, kind: Forbidden, msg: "Access denied, admin only"},
		{name: "user on staff route", userID: "1", req: staff, wantErr: true, kind: Forbidden, msg: "Access denied, employer or admin only"},
		{name: "deleted identity on admin route", userID: "404", req: adminOnly, wantErr: true, kind: Forbidden, msg: "Access denied, admin only"},
		{name: "deleted identity on staff route", userID: "404", req: staff, wantErr: true, kind: Forbidden, msg: "Access denied, employer or admin only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &stubFinder{users: users}
			g := NewGate(&stubVerifier{}, f)

			user, err := g.Authorize(context.Background(), tt.userID, tt.req)
			assert.Equal(t, 1, f.calls, "exactly one identity lookup")
			if tt.wantErr {
				requireDenial(t, err, tt.kind, tt.msg)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.userID, user.ID)
		})
	}
}

func TestAuthorize_StoreFailureIsInternal(t *testing.T) {
	storeErr := errors.New("server selection timeout")
	g := NewGate(&stubVerifier{}, &stubFinder{err: storeErr})

	_, err := g.Authorize(context.Background(), "9", adminOnly)
	requireDenial(t, err, Internal, "server selection timeout")
	assert.ErrorIs(t, err, storeErr)

	d, _ := AsDenial(err)
	assert.Equal(t, http.StatusInternalServerError, d.Status())
}

// A stored record whose role is outside the closed set is corrupt data, not a
// caller without privileges: it surfaces as a store failure.
func TestAuthorize_CorruptStoredRoleIsInternal(t *testing.T) {
	corrupt := fmt.Errorf("user 7: %w", domain.ErrInvalidRole)
	g := NewGate(&stubVerifier{}, &stubFinder{err: corrupt})

	_, err := g.Authorize(context.Background(), "7", adminOnly)
	requireDenial(t, err, Internal, corrupt.Error())
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	d, _ := AsDenial(err)
	assert.Equal(t, http.StatusInternalServerError, d.Status())
}

func TestAuthorize_RoleReadFreshEachTime(t *testing.T) {
	f := &stubFinder{users: map[string]*domain.User{"5": {ID: "5", Role: domain.RoleEmployer}}}
	g := NewGate(&stubVerifier{}, f)

	_, err := g.Authorize(context.Background(), "5", adminOnly)
	requireDenial(t, err, Forbidden, "Access denied, admin only")

	f.users["5"].Role = domain.RoleAdmin
	user, err := g.Authorize(context.Background(), "5", adminOnly)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.Equal(t, 2, f.calls)
}

func TestKind_Status(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, Unauthenticated.Status())
	assert.Equal(t, http.StatusForbidden, Forbidden.Status())
	assert.Equal(t, http.StatusInternalServerError, Internal.Status())
}
