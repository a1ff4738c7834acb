// Package session holds the dashboard's authentication state: one Session
// per browser, backed by a persisted token Store.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Reason tells listeners why a session left the authenticated state.
type Reason int

const (
	ReasonLogout Reason = iota
	ReasonExpired
)

func (r Reason) String() string {
	if r == ReasonExpired {
		return "expired"
	}
	return "logout"
}

var ErrEmptyToken = errors.New("empty session token")

type Session struct {
	key   string
	store Store
	ttl   time.Duration

	mu        sync.RWMutex
	state     State
	token     string
	listeners []func(Reason)
}

// Open probes the store once for a persisted token and starts the session
// authenticated if one is found.
func Open(ctx context.Context, store Store, key string, ttl time.Duration) (*Session, error) {
	s := &Session{key: key, store: store, ttl: ttl}
	token, err := store.Load(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		return s, nil
	case err != nil:
		return nil, err
	}
	s.state = Authenticated
	s.token = token
	return s, nil
}

func (s *Session) Key() string {
	return s.key
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Authenticated() bool {
	return s.State() == Authenticated
}

// Token returns the bearer token, empty while anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers fn to run after every authenticated -> anonymous
// transition.
func (s *Session) Subscribe(fn func(Reason)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Authenticate persists token and moves the session to Authenticated. If the
// store refuses the token the session stays as it was.
func (s *Session) Authenticate(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.store.Save(ctx, s.key, token, s.ttl); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = Authenticated
	s.token = token
	s.mu.Unlock()
	return nil
}

// Logout clears the persisted token and notifies listeners.
func (s *Session) Logout(ctx context.Context) error {
	return s.end(ctx, ReasonLogout, nil)
}

// Expire is called when the backend rejected token. It does nothing once the
// session holds a different token, e.g. after a newer login.
func (s *Session) Expire(ctx context.Context, token string) {
	_ = s.end(ctx, ReasonExpired, func(current string) bool {
		return current == token
	})
}

// end moves the session to Anonymous if match accepts the current token; a
// nil match accepts any.
func (s *Session) end(ctx context.Context, reason Reason, match func(string) bool) error {
	s.mu.Lock()
	if match != nil && !match(s.token) {
		s.mu.Unlock()
		return nil
	}
	wasAuthenticated := s.state == Authenticated
	s.state = Anonymous
	s.token = ""
	listeners := append([]func(Reason){}, s.listeners...)
	s.mu.Unlock()

	// the request that observed the 401 may already be cancelled
	err := s.store.Delete(context.WithoutCancel(ctx), s.key)
	if wasAuthenticated {
		for _, fn := range listeners {
			fn(reason)
		}
	}
	return err
}
