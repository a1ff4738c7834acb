package web

import (
	"VPN-Admin-dashboard/internal/logger"
	"VPN-Admin-dashboard/internal/metrics"
	"VPN-Admin-dashboard/internal/session"
	"fmt"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"net/http"
	"strconv"
	"time"
)

const (
	ctxSID     = "sid"
	ctxSession = "session"

	csrfField  = "csrf_token"
	csrfHeader = "X-CSRF-Token"
)

// withSession resolves the browser's signed session cookie, issuing a new id
// when it is missing or forged.
func (s *Server) withSession(c *gin.Context) {
	var sid string
	var ok bool
	if v, err := c.Cookie(cookieName); err == nil {
		sid, ok = s.opts.Signer.Verify(v)
	}
	if !ok {
		sid = session.NewID()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, s.opts.Signer.Sign(sid), int(s.opts.SessionTTL.Seconds()), "/", "", s.opts.CookieSecure, true)
	}
	c.Set(ctxSID, sid)
	c.Set(ctxSession, s.opts.Manager.Get(c.Request.Context(), sid))
	c.Next()
}

// checkFormToken rejects a POST that does not carry the session's form token.
func (s *Server) checkFormToken(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Next()
		return
	}
	token := c.PostForm(csrfField)
	if token == "" {
		token = c.GetHeader(csrfHeader)
	}
	if !s.opts.Signer.CheckFormToken(sidOf(c), token) {
		logger.Warn("form token mismatch", zap.String("method", c.Request.Method), zap.String("path", c.FullPath()))
		c.String(http.StatusForbidden, "invalid or missing form token, reload the page")
		c.Abort()
		return
	}
	c.Next()
}

func requireAuth(c *gin.Context) {
	if !sessionOf(c).Authenticated() {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func sidOf(c *gin.Context) string {
	return c.GetString(ctxSID)
}

func sessionOf(c *gin.Context) *session.Session {
	return c.MustGet(ctxSession).(*session.Session)
}

// recovery turns a handler panic into a 500 and alerts the operator.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec interface{}) {
		logger.NotifyAdmin(fmt.Sprintf("Panic in %s %s: %v", c.Request.Method, c.Request.URL.Path, rec))
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("method", c.Request.Method), zap.String("path", path),
				zap.Int("status", status), zap.Duration("took", time.Since(start)))
		}
	}
}
