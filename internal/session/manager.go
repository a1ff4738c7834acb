package session

import (
	"VPN-Admin-dashboard/internal/logger"
	"VPN-Admin-dashboard/internal/metrics"
	"context"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"sync"
	"time"
)

// KeyPrefix namespaces persisted tokens; the full key is KeyPrefix + ":" + sid.
const KeyPrefix = "adminToken"

type liveEntry struct {
	sess *Session
	seen time.Time
}

// Manager hands out the Session for a browser session id, opening it from
// the store on first use.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu     sync.Mutex
	live   map[string]*liveEntry
	onOpen []func(sid string, s *Session)
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		live:  make(map[string]*liveEntry),
	}
}

// NewID returns a fresh browser session id.
func NewID() string {
	return uuid.NewString()
}

// OnOpen registers fn to run for each session the manager opens.
func (m *Manager) OnOpen(fn func(sid string, s *Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOpen = append(m.onOpen, fn)
}

// Get returns the live session for sid. A store failure is logged and yields
// an anonymous session so the dashboard stays usable.
func (m *Manager) Get(ctx context.Context, sid string) *Session {
	m.mu.Lock()
	if e, ok := m.live[sid]; ok {
		e.seen = m.now()
		m.mu.Unlock()
		return e.sess
	}
	m.mu.Unlock()

	sess, err := Open(ctx, m.store, KeyPrefix+":"+sid, m.ttl)
	if err != nil {
		logger.Error("session store load failed", zap.Error(err))
		sess = &Session{key: KeyPrefix + ":" + sid, store: m.store, ttl: m.ttl}
	}

	m.mu.Lock()
	if e, ok := m.live[sid]; ok {
		// another request opened it first
		e.seen = m.now()
		m.mu.Unlock()
		return e.sess
	}
	m.live[sid] = &liveEntry{sess: sess, seen: m.now()}
	hooks := append([]func(string, *Session){}, m.onOpen...)
	metrics.SessionsLive.Set(float64(len(m.live)))
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(sid, sess)
	}
	return sess
}

// Drop forgets the in-memory session for sid; a persisted token survives.
func (m *Manager) Drop(sid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, sid)
	metrics.SessionsLive.Set(float64(len(m.live)))
}

// Sweep drops sessions idle for longer than maxIdle and returns their ids.
func (m *Manager) Sweep(maxIdle time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxIdle)
	var dropped []string
	for sid, e := range m.live {
		if e.seen.Before(cutoff) {
			delete(m.live, sid)
			dropped = append(dropped, sid)
		}
	}
	metrics.SessionsLive.Set(float64(len(m.live)))
	return dropped
}

// Purge removes expired tokens from the store.
func (m *Manager) Purge(ctx context.Context) (int64, error) {
	return m.store.Purge(ctx)
}

func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}
