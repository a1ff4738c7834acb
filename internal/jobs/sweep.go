package jobs

import (
	"VPN-Admin-dashboard/internal/logger"
	"context"
	"go.uber.org/zap"
	"time"
)

type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}

type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// SessionSweep forgets idle in-memory sessions and purges expired tokens
// from the session store.
type SessionSweep struct {
	sessions Sweeper
	store    Purger
	maxIdle  time.Duration
}

func NewSessionSweep(sessions Sweeper, store Purger) *SessionSweep {
	return &SessionSweep{sessions: sessions, store: store, maxIdle: sessionIdle}
}

func (s *SessionSweep) Run() {
	defer logger.NotifyOnPanic("session sweep")
	dropped := s.sessions.Sweep(s.maxIdle)
	purged, err := s.store.Purge(context.Background())
	if err != nil {
		logger.Error("purging expired session tokens failed", zap.Error(err))
	}
	if dropped > 0 || purged > 0 {
		logger.Info("session sweep", zap.Int("idle_dropped", dropped), zap.Int64("tokens_purged", purged))
	}
}
