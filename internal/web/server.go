// Package web is the dashboard's navigation shell: routes, the session guard
// and page rendering.
package web

import (
	"VPN-Admin-dashboard/internal/api"
	"VPN-Admin-dashboard/internal/format"
	"VPN-Admin-dashboard/internal/jobs"
	"VPN-Admin-dashboard/internal/logger"
	"VPN-Admin-dashboard/internal/metrics"
	"VPN-Admin-dashboard/internal/pages"
	"VPN-Admin-dashboard/internal/session"
	"embed"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const cookieName = "vpn_admin_sid"

// HealthReporter reports the last backend health probe.
type HealthReporter interface {
	Status() jobs.BackendStatus
}

type Options struct {
	API            api.Config
	Manager        *session.Manager
	Signer         *session.Signer
	Health         HealthReporter
	SessionTTL     time.Duration
	CookieSecure   bool
	MetricsEnabled bool
	// TrustedProxies may set X-Forwarded-For; nil trusts none.
	TrustedProxies []string
}

// Server owns the gin engine and one page workspace per browser session.
type Server struct {
	opts    Options
	engine  *gin.Engine
	limiter *RateLimiter

	mu         sync.Mutex
	workspaces map[string]*pages.Workspace
}

func New(opts Options) *Server {
	s := &Server{
		opts:       opts,
		limiter:    NewRateLimiter(),
		workspaces: make(map[string]*pages.Workspace),
	}
	// a session that leaves the authenticated state loses its page state
	opts.Manager.OnOpen(func(sid string, sess *session.Session) {
		sess.Subscribe(func(session.Reason) {
			s.dropWorkspace(sid)
		})
	})
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(s.opts.TrustedProxies); err != nil {
		logger.Error("invalid trusted proxies, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(recovery(), requestMetrics())
	tmpl := template.Must(template.New("").Funcs(format.Funcs()).ParseFS(templatesFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)
	static, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(static))

	r.GET("/healthz", s.healthz)
	if s.opts.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	app := r.Group("/", s.withSession, s.checkFormToken)
	app.GET("/login", s.loginPage)
	app.POST("/login", s.login)

	authed := app.Group("/", requireAuth)
	authed.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	authed.POST("/logout", s.logout)
	authed.GET("/dashboard", s.dashboard)

	authed.GET("/plans", s.plans)
	authed.POST("/plans", s.createPlan)
	authed.POST("/plans/toggle", s.togglePlanForm)
	authed.POST("/plans/:id/edit", s.editPlan)
	authed.POST("/plans/:id/cancel", s.cancelPlan)
	authed.POST("/plans/:id/save", s.savePlan)
	authed.POST("/plans/:id/deactivate", s.deactivatePlan)

	authed.GET("/orders", s.orders)

	authed.GET("/endpoints", s.endpoints)
	authed.POST("/endpoints", s.createEndpoint)
	authed.POST("/endpoints/new", s.newEndpoint)
	authed.POST("/endpoints/new/cancel", s.cancelNewEndpoint)
	authed.POST("/endpoints/:id/edit", s.editEndpoint)
	authed.POST("/endpoints/:id/cancel", s.cancelEndpoint)
	authed.POST("/endpoints/:id/save", s.saveEndpoint)
	authed.POST("/endpoints/:id/delete", s.deleteEndpoint)

	authed.GET("/settings", s.settings)
	authed.POST("/settings/card", s.saveCard)
	authed.POST("/settings/servers/:id/edit", s.editServer)
	authed.POST("/settings/servers/:id/cancel", s.cancelServer)
	authed.POST("/settings/servers/:id/save", s.saveServer)
	authed.POST("/settings/servers/:id/reveal", s.revealPassword)

	authed.GET("/broadcast", s.broadcast)
	authed.POST("/broadcast", s.sendBroadcast)
	return r
}

// workspace returns the page state of the calling session, creating it on
// first use.
func (s *Server) workspace(c *gin.Context) *pages.Workspace {
	sid := sidOf(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[sid]
	if !ok {
		ws = pages.NewWorkspace(api.New(s.opts.API, sessionOf(c)))
		s.workspaces[sid] = ws
	}
	return ws
}

// healthz reports the dashboard as up and, once probed, the backend's state.
func (s *Server) healthz(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if s.opts.Health != nil {
		st := s.opts.Health.Status()
		if st.LastChecked.IsZero() {
			body["backend"] = gin.H{"checked": false}
		} else {
			backend := gin.H{"checked": true, "up": st.Up, "last_checked": st.LastChecked.UTC().Format(time.RFC3339)}
			if st.LastError != "" {
				backend["error"] = st.LastError
			}
			if !st.Up {
				body["status"] = "degraded"
			}
			body["backend"] = backend
		}
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) dropWorkspace(sid string) {
	s.mu.Lock()
	delete(s.workspaces, sid)
	s.mu.Unlock()
}

// Sweep forgets sessions idle for longer than maxIdle along with their page
// state and returns how many were dropped.
func (s *Server) Sweep(maxIdle time.Duration) int {
	dropped := s.opts.Manager.Sweep(maxIdle)
	for _, sid := range dropped {
		s.dropWorkspace(sid)
	}
	s.limiter.Prune(maxIdle)
	return len(dropped)
}
