package pages

import (
	"VPN-Admin-dashboard/internal/api"
	"context"
)

type StatsSource interface {
	Stats(ctx context.Context) (api.Stats, error)
}

// Dashboard shows the backend's aggregate stats and recent orders.
type Dashboard struct {
	base
	src   StatsSource
	stats api.Stats
}

func NewDashboard(src StatsSource) *Dashboard {
	return &Dashboard{src: src}
}

// Load fetches the stats. A failure leaves the page ready with zero stats.
func (d *Dashboard) Load(ctx context.Context) error {
	gen := d.beginLoad()
	stats, err := d.src.Stats(ctx)
	d.finishLoad(gen, err, func() {
		if err != nil {
			stats = api.Stats{}
		}
		d.stats = stats
	})
	return err
}

type DashboardView struct {
	Phase  Phase
	Failed bool
	Stats  api.Stats
}

func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := DashboardView{Phase: d.phase, Failed: d.failed, Stats: d.stats}
	v.Stats.RecentOrders = append([]api.RecentOrder(nil), d.stats.RecentOrders...)
	return v
}
