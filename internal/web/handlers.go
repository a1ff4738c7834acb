package web

import (
	"VPN-Admin-dashboard/internal/api"
	"VPN-Admin-dashboard/internal/logger"
	"VPN-Admin-dashboard/internal/metrics"
	"VPN-Admin-dashboard/internal/pages"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"net/http"
	"strconv"
	"strings"
)

type planForm struct {
	ServerType   string  `form:"server_type"`
	DurationDays int     `form:"duration_days"`
	DataLimitGB  float64 `form:"data_limit_gb"`
	PriceIRR     float64 `form:"price_irr"`
	PriceUSDT    float64 `form:"price_usdt"`
	IsActive     bool    `form:"is_active"`
}

type endpointForm struct {
	Name     string `form:"name"`
	Address  string `form:"address"`
	IsActive bool   `form:"is_active"`
}

type serverForm struct {
	Name     string `form:"name"`
	APIURL   string `form:"api_url"`
	Username string `form:"username"`
	Password string `form:"password"`
}

type broadcastForm struct {
	Message string `form:"message"`
	Target  string `form:"target"`
	Action  string `form:"action"`
}

func (s *Server) render(c *gin.Context, status int, name, nav string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Nav"] = nav
	data["LoggedIn"] = sessionOf(c).Authenticated()
	data["CSRF"] = s.opts.Signer.FormToken(sidOf(c))
	c.HTML(status, name, data)
}

// done finishes a form post: back to the login page if the session expired
// meanwhile, otherwise back to the page the form came from.
func done(c *gin.Context, err error, back string) {
	if errors.Is(err, api.ErrSessionExpired) {
		c.Redirect(http.StatusSeeOther, "/login?expired=1")
		return
	}
	if err != nil && !errors.Is(err, pages.ErrBusy) {
		logger.Warn("action failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, back)
}

// expired reports whether a page load ended the session and redirects if so.
func expired(c *gin.Context, err error) bool {
	if errors.Is(err, api.ErrSessionExpired) {
		c.Redirect(http.StatusFound, "/login?expired=1")
		return true
	}
	return false
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return 0, false
	}
	return uint(id), true
}

func audit(c *gin.Context, action, params string) {
	logger.LogAdminAction(sidOf(c), action, params)
}

func (s *Server) loginPage(c *gin.Context) {
	if sessionOf(c).Authenticated() {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	s.render(c, http.StatusOK, "login.html", "", gin.H{"Expired": c.Query("expired") == "1"})
}

func (s *Server) login(c *gin.Context) {
	sess := sessionOf(c)
	if sess.Authenticated() {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	// a rejected attempt leaves nothing in memory; the cookie reopens the
	// session from the store on the next request
	defer func() {
		if !sess.Authenticated() {
			s.opts.Manager.Drop(sidOf(c))
		}
	}()
	// limited per client address, not per cookie
	if s.limiter.IsLimited("ip:"+c.ClientIP(), actionLogin) {
		metrics.LoginAttempts.WithLabelValues("limited").Inc()
		s.render(c, http.StatusTooManyRequests, "login.html", "", gin.H{"Error": "Too many attempts, try again in a moment"})
		return
	}
	l := pages.NewLogin(api.New(s.opts.API, sess), sess)
	if err := l.Submit(c.Request.Context(), c.PostForm("password")); err != nil {
		metrics.LoginAttempts.WithLabelValues("failed").Inc()
		msg := "Invalid credentials"
		var le *pages.LoginError
		if errors.As(err, &le) {
			msg = le.Message
		}
		logger.Warn("login failed", zap.Error(err))
		s.render(c, http.StatusUnauthorized, "login.html", "", gin.H{"Error": msg})
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	audit(c, "login", "")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) logout(c *gin.Context) {
	if err := sessionOf(c).Logout(c.Request.Context()); err != nil {
		logger.Error("logout: clearing stored token failed", zap.Error(err))
	}
	audit(c, "logout", "")
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) dashboard(c *gin.Context) {
	d := s.workspace(c).Dashboard
	if expired(c, d.Load(c.Request.Context())) {
		return
	}
	s.render(c, http.StatusOK, "dashboard.html", "dashboard", gin.H{"View": d.View()})
}

func (s *Server) plans(c *gin.Context) {
	p := s.workspace(c).Plans
	if expired(c, p.Mount(c.Request.Context())) {
		return
	}
	s.render(c, http.StatusOK, "plans.html", "plans", gin.H{"View": p.View(), "Toast": p.TakeToast()})
}

func (s *Server) togglePlanForm(c *gin.Context) {
	p := s.workspace(c).Plans
	p.ToggleCreate()
	c.Redirect(http.StatusSeeOther, "/plans")
}

func (s *Server) createPlan(c *gin.Context) {
	var f planForm
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	in := api.PlanInput{
		ServerType:   f.ServerType,
		DurationDays: f.DurationDays,
		DataLimitGB:  f.DataLimitGB,
		PriceIRR:     f.PriceIRR,
		PriceUSDT:    f.PriceUSDT,
		IsActive:     f.IsActive,
	}
	err := s.workspace(c).Plans.Create(c.Request.Context(), in)
	if err == nil {
		audit(c, "create_plan", fmt.Sprintf("%s %dd %vGB", in.ServerType, in.DurationDays, in.DataLimitGB))
	}
	done(c, err, "/plans")
}

func (s *Server) editPlan(c *gin.Context) {
	if id, ok := paramID(c); ok {
		s.workspace(c).Plans.StartEdit(id)
		c.Redirect(http.StatusSeeOther, "/plans")
	}
}

func (s *Server) cancelPlan(c *gin.Context) {
	if id, ok := paramID(c); ok {
		s.workspace(c).Plans.Cancel(id)
		c.Redirect(http.StatusSeeOther, "/plans")
	}
}

func (s *Server) savePlan(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var f planForm
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	p := s.workspace(c).Plans
	p.Edit(id, pages.PlanDraft{
		DurationDays: f.DurationDays,
		DataLimitGB:  f.DataLimitGB,
		PriceIRR:     f.PriceIRR,
		PriceUSDT:    f.PriceUSDT,
		IsActive:     f.IsActive,
	})
	err := p.Save(c.Request.Context(), id)
	if err == nil {
		audit(c, "update_plan", "id="+c.Param("id"))
	}
	done(c, err, "/plans")
}

func (s *Server) deactivatePlan(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	err := s.workspace(c).Plans.Deactivate(c.Request.Context(), id)
	if err == nil {
		audit(c, "deactivate_plan", "id="+c.Param("id"))
	}
	done(c, err, "/plans")
}

func (s *Server) orders(c *gin.Context) {
	o := s.workspace(c).Orders
	// every visit without an id starts again from the prompt
	q := strings.TrimSpace(c.Query("telegram_id"))
	if q == "" {
		o.Reset()
	} else if expired(c, o.Search(c.Request.Context(), q)) {
		return
	}
	s.render(c, http.StatusOK, "orders.html", "orders", gin.H{"View": o.View()})
}

func (s *Server) endpoints(c *gin.Context) {
	e := s.workspace(c).Endpoints
	if expired(c, e.Mount(c.Request.Context())) {
		return
	}
	s.render(c, http.StatusOK, "endpoints.html", "endpoints", gin.H{"View": e.View(), "Toast": e.TakeToast()})
}

func (s *Server) newEndpoint(c *gin.Context) {
	s.workspace(c).Endpoints.StartCreate()
	c.Redirect(http.StatusSeeOther, "/endpoints")
}

func (s *Server) cancelNewEndpoint(c *gin.Context) {
	s.workspace(c).Endpoints.CancelCreate()
	c.Redirect(http.StatusSeeOther, "/endpoints")
}

func (s *Server) createEndpoint(c *gin.Context) {
	var f endpointForm
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	err := s.workspace(c).Endpoints.Create(c.Request.Context(), api.EndpointInput(f))
	if err == nil {
		audit(c, "create_endpoint", f.Name+" "+f.Address)
	}
	done(c, err, "/endpoints")
}

func (s *Server) editEndpoint(c *gin.Context) {
	if id, ok := paramID(c); ok {
		s.workspace(c).Endpoints.StartEdit(id)
		c.Redirect(http.StatusSeeOther, "/endpoints")
	}
}

func (s *Server) cancelEndpoint(c *gin.Context) {
	if id, ok := paramID(c); ok {
		s.workspace(c).Endpoints.Cancel(id)
		c.Redirect(http.StatusSeeOther, "/endpoints")
	}
}

func (s *Server) saveEndpoint(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var f endpointForm
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	e := s.workspace(c).Endpoints
	e.Edit(id, api.EndpointInput(f))
	err := e.Save(c.Request.Context(), id)
	if err == nil {
		audit(c, "update_endpoint", "id="+c.Param("id")+" "+f.Address)
	}
	done(c, err, "/endpoints")
}

func (s *Server) deleteEndpoint(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	err := s.workspace(c).Endpoints.Delete(c.Request.Context(), id)
	if err == nil {
		audit(c, "delete_endpoint", "id="+c.Param("id"))
	}
	done(c, err, "/endpoints")
}

func (s *Server) settings(c *gin.Context) {
	st := s.workspace(c).Settings
	if expired(c, st.Mount(c.Request.Context())) {
		return
	}
	s.render(c, http.StatusOK, "settings.html", "settings", gin.H{"View": st.View(), "Toast": st.TakeToast()})
}

func (s *Server) saveCard(c *gin.Context) {
	err := s.workspace(c).Settings.SaveCard(c.Request.Context(), c.PostForm("admin_card_number"))
	if err == nil {
		audit(c, "update_card", "")
	}
	done(c, err, "/settings")
}

func (s *Server) editServer(c *gin.Context) {
	if id, ok := paramID(c); ok {
		s.workspace(c).Settings.StartEdit(id)
		c.Redirect(http.StatusSeeOther, "/settings")
	}
}

func (s *Server) cancelServer(c *gin.Context) {
	if id, ok := paramID(c); ok {
		s.workspace(c).Settings.Cancel(id)
		c.Redirect(http.StatusSeeOther, "/settings")
	}
}

func (s *Server) saveServer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var f serverForm
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	st := s.workspace(c).Settings
	st.Edit(id, pages.ServerDraft(f))
	err := st.SaveServer(c.Request.Context(), id)
	if err == nil {
		// credentials stay out of the audit log
		audit(c, "update_server", "id="+c.Param("id")+" "+f.APIURL)
	}
	done(c, err, "/settings")
}

func (s *Server) revealPassword(c *gin.Context) {
	if id, ok := paramID(c); ok {
		s.workspace(c).Settings.TogglePassword(id)
		c.Redirect(http.StatusSeeOther, "/settings")
	}
}

func (s *Server) broadcast(c *gin.Context) {
	b := s.workspace(c).Broadcast
	s.render(c, http.StatusOK, "broadcast.html", "broadcast", gin.H{"View": b.View()})
}

func (s *Server) sendBroadcast(c *gin.Context) {
	var f broadcastForm
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	b := s.workspace(c).Broadcast
	if f.Action == "preview" {
		b.Draft(f.Message, f.Target)
		c.Redirect(http.StatusSeeOther, "/broadcast")
		return
	}
	blank := strings.TrimSpace(f.Message) == ""
	if !blank && s.limiter.IsLimited(sidOf(c), actionBroadcast) {
		b.Draft(f.Message, f.Target)
		s.render(c, http.StatusTooManyRequests, "broadcast.html", "broadcast", gin.H{
			"View":  b.View(),
			"Toast": &pages.Toast{Message: "A broadcast was just sent, wait before sending another"},
		})
		return
	}
	err := b.Send(c.Request.Context(), f.Message, f.Target)
	if err == nil && !blank {
		audit(c, "broadcast", "target="+pages.NormalizeTarget(f.Target))
	}
	done(c, err, "/broadcast")
}
