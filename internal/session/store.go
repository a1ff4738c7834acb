package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("session token not found")

// Store persists session tokens under a key.
type Store interface {
	Load(ctx context.Context, key string) (string, error)
	// Save stores token under key; ttl <= 0 keeps it until deleted.
	Save(ctx context.Context, key, token string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Purge removes expired tokens and reports how many were dropped.
	Purge(ctx context.Context) (int64, error)
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore keeps tokens in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Load(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if m.expired(e) {
		delete(m.entries, key)
		return "", ErrNotFound
	}
	return e.token, nil
}

func (m *MemoryStore) Save(ctx context.Context, key, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{token: token}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryStore) Purge(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}
