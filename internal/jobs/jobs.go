// Package jobs runs the dashboard's periodic background work on cron.
package jobs

import (
	"VPN-Admin-dashboard/internal/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"time"
)

const (
	sweepSchedule = "@every 10m"
	sessionIdle   = 2 * time.Hour
)

// Start schedules the health probe on healthSchedule and the session sweep
// every ten minutes. Stop the returned cron on shutdown.
func Start(healthSchedule string, probe *HealthProbe, sweep *SessionSweep) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(healthSchedule, probe.Run); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(sweepSchedule, sweep.Run); err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("background jobs started", zap.String("health", healthSchedule), zap.String("sweep", sweepSchedule))
	return c, nil
}
