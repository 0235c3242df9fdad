package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobnexus/jobboard/internal/client/apiclient"
	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/core/ports"
)

type memCredentials struct {
	mu    sync.Mutex
	token string
	saves int
}

func (m *memCredentials) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memCredentials) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.saves++
	return nil
}

func (m *memCredentials) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *memCredentials) stored() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// fakeBackend resolves tokens of the form "tok-<id>". When gate is set, Me
// blocks until it is closed or the context ends.
type fakeBackend struct {
	users    map[string]*domain.User
	meErr    error
	gate     chan struct{}
	meCalled chan struct{}
	loginErr error

	// When profileGate is set, UpdateProfile blocks until it is closed or
	// the context ends, after closing profileCalled.
	profileGate   chan struct{}
	profileCalled chan struct{}

	mu       sync.Mutex
	register []ports.RegisterInput
}

func (b *fakeBackend) Login(_ context.Context, email, password string) (string, *domain.User, error) {
	if b.loginErr != nil {
		return "", nil, b.loginErr
	}
	for id, u := range b.users {
		if u.Email == email && password == "secret" {
			c := *u
			return "tok-" + id, &c, nil
		}
	}
	return "", nil, &apiclient.Error{Status: 401, Message: "Invalid credentials"}
}

func (b *fakeBackend) Register(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.register = append(b.register, in)
	u := &domain.User{ID: "new", Email: in.Email, FirstName: in.FirstName, Role: domain.RoleUser}
	b.users["new"] = u
	c := *u
	return &c, nil
}

func (b *fakeBackend) Me(ctx context.Context, token string) (*domain.User, error) {
	if b.meCalled != nil {
		close(b.meCalled)
	}
	if b.gate != nil {
		select {
		case <-b.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.meErr != nil {
		return nil, b.meErr
	}
	u, ok := b.users[token[len("tok-"):]]
	if !ok {
		return nil, &apiclient.Error{Status: 401, Message: "Token is not valid"}
	}
	c := *u
	return &c, nil
}

func (b *fakeBackend) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error) {
	if b.profileCalled != nil {
		close(b.profileCalled)
	}
	if b.profileGate != nil {
		select {
		case <-b.profileGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	u := *b.users[token[len("tok-"):]]
	update.Apply(&u)
	return &u, nil
}

func newBackend() *fakeBackend {
	return &fakeBackend{users: map[string]*domain.User{
		"1": {ID: "1", Email: "carol@example.com", FirstName: "Carol", Role: domain.RoleUser},
		"9": {ID: "9", Email: "root@example.com", Role: domain.RoleAdmin},
	}}
}

func waitLoaded(t *testing.T, s *Store) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := s.Wait(ctx)
	require.NoError(t, err)
	return st
}

func TestStore_LoadingUntilStarted(t *testing.T) {
	s := New(&memCredentials{}, newBackend(), zerolog.Nop())
	st := s.Snapshot()
	assert.True(t, st.Loading)
	assert.False(t, st.Authenticated())

	s.Start(context.Background())
	st = waitLoaded(t, s)
	assert.False(t, st.Loading)
	assert.False(t, st.Authenticated())
}

func TestStore_RestoresPersistedCredential(t *testing.T) {
	creds := &memCredentials{token: "tok-9"}
	s := New(creds, newBackend(), zerolog.Nop())
	defer s.Close()

	s.Start(context.Background())
	st := waitLoaded(t, s)
	require.True(t, st.Authenticated())
	assert.Equal(t, domain.RoleAdmin, st.Role())
}

func TestStore_RejectedCredentialIsCleared(t *testing.T) {
	creds := &memCredentials{token: "tok-404"}
	s := New(creds, newBackend(), zerolog.Nop())

	s.Start(context.Background())
	st := waitLoaded(t, s)
	assert.False(t, st.Authenticated())
	assert.Empty(t, creds.stored())
}

func TestStore_UnreachableServerKeepsCredential(t *testing.T) {
	b := newBackend()
	b.meErr = errors.New("connection refused")
	creds := &memCredentials{token: "tok-1"}
	s := New(creds, b, zerolog.Nop())

	s.Start(context.Background())
	st := waitLoaded(t, s)
	assert.False(t, st.Authenticated())
	assert.Equal(t, "tok-1", creds.stored())
}

func TestStore_CloseDiscardsInFlightCheck(t *testing.T) {
	b := newBackend()
	b.gate = make(chan struct{})
	b.meCalled = make(chan struct{})
	s := New(&memCredentials{token: "tok-9"}, b, zerolog.Nop())

	s.Start(context.Background())
	<-b.meCalled
	assert.True(t, s.Snapshot().Loading)

	s.Close()
	close(b.gate)

	_, err := s.Wait(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	// Give the discarded check a moment to land; it must not set an identity.
	time.Sleep(20 * time.Millisecond)
	assert.False(t, s.Snapshot().Authenticated())
}

func TestStore_LogoutSupersedesInFlightCheck(t *testing.T) {
	b := newBackend()
	b.gate = make(chan struct{})
	b.meCalled = make(chan struct{})
	creds := &memCredentials{token: "tok-9"}
	s := New(creds, b, zerolog.Nop(), WithLanding("/home"))
	defer s.Close()

	s.Start(context.Background())
	<-b.meCalled

	assert.Equal(t, "/home", s.Logout())
	close(b.gate)

	st := waitLoaded(t, s)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, st.Authenticated())
	assert.False(t, s.Snapshot().Authenticated())
	assert.Empty(t, creds.stored())
}

func TestStore_LoginPersistsCredential(t *testing.T) {
	creds := &memCredentials{}
	s := New(creds, newBackend(), zerolog.Nop())
	defer s.Close()
	s.Start(context.Background())
	waitLoaded(t, s)

	user, err := s.Login(context.Background(), "carol@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "1", user.ID)
	assert.Equal(t, "tok-1", creds.stored())

	st := s.Snapshot()
	assert.True(t, st.Authenticated())
	assert.False(t, st.Loading)
}

func TestStore_FailedLoginKeepsPreviousState(t *testing.T) {
	creds := &memCredentials{token: "tok-9"}
	s := New(creds, newBackend(), zerolog.Nop())
	defer s.Close()
	s.Start(context.Background())
	waitLoaded(t, s)

	_, err := s.Login(context.Background(), "root@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apiclient.IsUnauthorized(err))

	st := s.Snapshot()
	require.True(t, st.Authenticated())
	assert.Equal(t, "9", st.Identity.ID)
	assert.Equal(t, "tok-9", creds.stored())
}

func TestStore_RegisterLogsInAsUser(t *testing.T) {
	b := newBackend()
	creds := &memCredentials{}
	s := New(creds, b, zerolog.Nop())
	defer s.Close()
	s.Start(context.Background())
	waitLoaded(t, s)

	user, err := s.Register(context.Background(), ports.RegisterInput{
		Email: "dana@example.com", Password: "secret", FirstName: "Dana",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "tok-new", creds.stored())
	require.Len(t, b.register, 1)
}

func TestStore_UpdateProfile(t *testing.T) {
	s := New(&memCredentials{token: "tok-1"}, newBackend(), zerolog.Nop())
	defer s.Close()

	_, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	s.Start(context.Background())
	waitLoaded(t, s)

	name := "Caroline"
	user, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Caroline", user.FirstName)
	assert.Equal(t, "Caroline", s.Snapshot().Identity.FirstName)
	assert.Equal(t, domain.RoleUser, s.Snapshot().Role())
}

func TestStore_LogoutSupersedesProfileUpdate(t *testing.T) {
	b := newBackend()
	b.profileGate = make(chan struct{})
	b.profileCalled = make(chan struct{})
	creds := &memCredentials{token: "tok-1"}
	s := New(creds, b, zerolog.Nop())
	defer s.Close()
	s.Start(context.Background())
	waitLoaded(t, s)

	done := make(chan error, 1)
	go func() {
		name := "Caroline"
		_, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{FirstName: &name})
		done <- err
	}()
	<-b.profileCalled

	s.Logout()
	close(b.profileGate)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("profile update did not return after logout")
	}

	st := s.Snapshot()
	assert.False(t, st.Authenticated())
	assert.False(t, st.Loading)
	assert.Empty(t, creds.stored())

	_, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := New(&memCredentials{token: "tok-1"}, newBackend(), zerolog.Nop())
	defer s.Close()
	s.Start(context.Background())
	st := waitLoaded(t, s)

	st.Identity.Role = domain.RoleAdmin
	assert.Equal(t, domain.RoleUser, s.Snapshot().Role())
}

func TestStore_ClosedRejectsTransitions(t *testing.T) {
	s := New(&memCredentials{}, newBackend(), zerolog.Nop())
	s.Close()
	s.Close()

	_, err := s.Login(context.Background(), "carol@example.com", "secret")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFileCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobctl", "credentials.json")
	f := FileCredentials{Path: path}

	tok, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, f.Save("abc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err = f.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, f.Clear())
	require.NoError(t, f.Clear())
	tok, err = f.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestFileCredentials_CorruptFileIsRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	tok, err := FileCredentials{Path: path}.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
