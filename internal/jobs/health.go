package jobs

import (
	"VPN-Admin-dashboard/internal/logger"
	"VPN-Admin-dashboard/internal/metrics"
	"context"
	"go.uber.org/zap"
	"sync"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type BackendStatus struct {
	Up          bool
	LastError   string
	LastChecked time.Time
}

// HealthProbe pings the backend API and alerts the operator when it goes
// down or comes back.
type HealthProbe struct {
	backend Pinger
	timeout time.Duration

	mu      sync.Mutex
	status  BackendStatus
	checked bool
}

func NewHealthProbe(backend Pinger) *HealthProbe {
	return &HealthProbe{backend: backend, timeout: 5 * time.Second}
}

func (h *HealthProbe) Run() {
	defer logger.NotifyOnPanic("health probe")
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	err := h.backend.Ping(ctx)

	h.mu.Lock()
	wasUp, first := h.status.Up, !h.checked
	h.checked = true
	h.status.LastChecked = time.Now()
	h.status.Up = err == nil
	h.status.LastError = ""
	if err != nil {
		h.status.LastError = err.Error()
	}
	h.mu.Unlock()

	if err != nil {
		metrics.BackendUp.Set(0)
		logger.Warn("backend health check failed", zap.Error(err))
		if wasUp || first {
			logger.NotifyAdmin("Backend API is unreachable: " + err.Error())
		}
		return
	}
	metrics.BackendUp.Set(1)
	if !wasUp && !first {
		logger.NotifyAdmin("Backend API is reachable again")
	}
}

// Status returns the result of the last probe.
func (h *HealthProbe) Status() BackendStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}
