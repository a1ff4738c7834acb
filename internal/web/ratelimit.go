package web

import (
	"sync"
	"time"
)

// RateLimiter implements per-key per-action in-memory rate limiting. Keys are
// session ids, or client addresses for login.
type RateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]map[string]time.Time
	limits   map[string]time.Duration
	now      func() time.Time
}

const (
	actionLogin     = "login"
	actionBroadcast = "broadcast"
)

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		lastCall: make(map[string]map[string]time.Time),
		limits: map[string]time.Duration{
			actionLogin:     2 * time.Second,
			actionBroadcast: 30 * time.Second,
		},
		now: time.Now,
	}
}

// IsLimited returns true if key is rate-limited for action. A call that is
// not limited is recorded.
func (r *RateLimiter) IsLimited(key, action string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if r.lastCall[key] == nil {
		r.lastCall[key] = make(map[string]time.Time)
	}
	limit, ok := r.limits[action]
	if !ok {
		limit = time.Second // default limit
	}
	last, seen := r.lastCall[key][action]
	if seen && now.Sub(last) < limit {
		return true
	}
	r.lastCall[key][action] = now
	return false
}

// Prune drops keys with no call in the last maxIdle and returns how many
// were dropped.
func (r *RateLimiter) Prune(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	dropped := 0
	for key, calls := range r.lastCall {
		idle := true
		for _, at := range calls {
			if !at.Before(cutoff) {
				idle = false
				break
			}
		}
		if idle {
			delete(r.lastCall, key)
			dropped++
		}
	}
	return dropped
}
