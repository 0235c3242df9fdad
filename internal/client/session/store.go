// Package session holds the client's view of who is logged in. It restores a
// persisted credential in the background on start, and every transition
// supersedes any call still in flight: a result that arrives after a newer
// transition, or after Close, is discarded.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jobnexus/jobboard/internal/client/apiclient"
	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/core/ports"
)

var (
	ErrClosed           = errors.New("session: store closed")
	ErrNotAuthenticated = errors.New("session: not logged in")
	ErrSuperseded       = errors.New("session: superseded by a newer transition")
)

// Backend is the part of the API the session needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	Me(ctx context.Context, token string) (*domain.User, error)
	UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error)
}

// State is a point-in-time view of the session.
type State struct {
	Identity *domain.User
	Loading  bool
}

// Authenticated reports whether an identity is present.
func (s State) Authenticated() bool { return s.Identity != nil }

// Role returns the identity's role, or "" when logged out.
func (s State) Role() domain.Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// Option configures a Store.
type Option func(*Store)

// WithLanding sets the path Logout returns. Defaults to "/".
func WithLanding(path string) Option {
	return func(s *Store) { s.landing = path }
}

// Store is the client session. The zero value is not usable; call New.
type Store struct {
	creds   CredentialStore
	backend Backend
	log     zerolog.Logger
	landing string

	mu      sync.Mutex
	state   State
	token   string
	gen     uint64
	started bool
	closed  bool
	cancel  context.CancelFunc
	changed chan struct{}
}

// New returns a store in the Loading state. Call Start to resolve it.
func New(creds CredentialStore, backend Backend, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		creds:   creds,
		backend: backend,
		log:     log.With().Str("component", "session").Logger(),
		landing: "/",
		state:   State{Loading: true},
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins restoring the persisted credential. It returns immediately;
// use Wait or Snapshot to observe the outcome. Calling Start twice is a no-op.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	token, err := s.creds.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("credential unreadable, starting logged out")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if token == "" {
		s.setLocked(State{})
		return
	}

	gen, checkCtx := s.beginLocked(ctx)
	go s.restore(checkCtx, gen, token)
}

func (s *Store) restore(ctx context.Context, gen uint64, token string) {
	user, err := s.backend.Me(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(gen) {
		s.log.Debug().Msg("discarding stale session check")
		return
	}
	s.cancelLocked()

	if err != nil {
		if apiclient.IsUnauthorized(err) {
			if clearErr := s.creds.Clear(); clearErr != nil {
				s.log.Warn().Err(clearErr).Msg("failed to clear rejected credential")
			}
		} else {
			s.log.Warn().Err(err).Msg("session check failed, starting logged out")
		}
		s.setLocked(State{})
		return
	}
	s.token = token
	s.setLocked(State{Identity: user})
}

// Snapshot returns the current state. The identity is a copy.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Wait blocks until the store is no longer loading.
func (s *Store) Wait(ctx context.Context) (State, error) {
	for {
		s.mu.Lock()
		if s.closed {
			st := s.snapshotLocked()
			s.mu.Unlock()
			return st, ErrClosed
		}
		if !s.state.Loading {
			st := s.snapshotLocked()
			s.mu.Unlock()
			return st, nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
}

// Changed returns a channel closed at the next state transition.
func (s *Store) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// Login exchanges credentials for a token, persists it and sets the identity.
// On failure the previous identity is kept.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.User, error) {
	gen, callCtx, prev, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}

	token, user, err := s.backend.Login(callCtx, email, password)
	return s.finishAuth(gen, prev, token, user, err)
}

// Register creates an account and logs into it. New accounts always hold
// the user role.
func (s *Store) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	gen, callCtx, prev, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.backend.Register(callCtx, in); err != nil {
		return s.finishAuth(gen, prev, "", nil, err)
	}
	token, user, err := s.backend.Login(callCtx, in.Email, in.Password)
	return s.finishAuth(gen, prev, token, user, err)
}

func (s *Store) finishAuth(gen uint64, prev State, token string, user *domain.User, callErr error) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if !s.currentLocked(gen) {
		return nil, ErrSuperseded
	}
	s.cancelLocked()

	if callErr != nil {
		s.setLocked(State{Identity: prev.Identity})
		return nil, callErr
	}
	if err := s.creds.Save(token); err != nil {
		s.setLocked(State{Identity: prev.Identity})
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.token = token
	s.setLocked(State{Identity: user})
	return cloneUser(user), nil
}

// UpdateProfile changes the presentation fields of the logged-in identity.
func (s *Store) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	gen, callCtx, prev, token, err := s.beginAuthed(ctx)
	if err != nil {
		return nil, err
	}
	user, callErr := s.backend.UpdateProfile(callCtx, token, update)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if !s.currentLocked(gen) {
		return nil, ErrSuperseded
	}
	s.cancelLocked()
	if callErr != nil {
		s.setLocked(State{Identity: prev.Identity})
		return nil, callErr
	}
	s.setLocked(State{Identity: user})
	return cloneUser(user), nil
}

// Logout clears the identity and the persisted credential, cancels anything
// in flight, and returns the path to navigate to.
func (s *Store) Logout() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.landing
	}
	s.gen++
	s.cancelLocked()
	s.token = ""
	if err := s.creds.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear credential on logout")
	}
	s.setLocked(State{})
	return s.landing
}

// Close tears the store down. An outstanding session check is cancelled and
// its result discarded. Close is idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++
	s.cancelLocked()
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Store) begin(ctx context.Context) (uint64, context.Context, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil, State{}, ErrClosed
	}
	prev := s.state
	gen, callCtx := s.beginLocked(ctx)
	s.setLocked(State{Identity: prev.Identity, Loading: true})
	return gen, callCtx, prev, nil
}

// beginAuthed is begin for transitions that act as the logged-in identity.
// The identity check and the new generation are taken under one lock so a
// concurrent Logout either happens first or supersedes the call.
func (s *Store) beginAuthed(ctx context.Context) (uint64, context.Context, State, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil, State{}, "", ErrClosed
	}
	if s.state.Identity == nil || s.token == "" {
		return 0, nil, State{}, "", ErrNotAuthenticated
	}
	prev := s.state
	token := s.token
	gen, callCtx := s.beginLocked(ctx)
	s.setLocked(State{Identity: prev.Identity, Loading: true})
	return gen, callCtx, prev, token, nil
}

// beginLocked starts a new transition, cancelling the previous one.
func (s *Store) beginLocked(ctx context.Context) (uint64, context.Context) {
	s.gen++
	s.cancelLocked()
	callCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return s.gen, callCtx
}

func (s *Store) currentLocked(gen uint64) bool {
	return !s.closed && gen == s.gen
}

func (s *Store) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Store) setLocked(st State) {
	s.state = State{Identity: cloneUser(st.Identity), Loading: st.Loading}
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Store) snapshotLocked() State {
	return State{Identity: cloneUser(s.state.Identity), Loading: s.state.Loading}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
