package web

import (
	"VPN-Admin-dashboard/internal/api"
	"VPN-Admin-dashboard/internal/fakeapi"
	"VPN-Admin-dashboard/internal/jobs"
	"VPN-Admin-dashboard/internal/session"
	"context"
	"github.com/gin-gonic/gin"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

type harness struct {
	t      *testing.T
	fake   *fakeapi.Backend
	store  *session.MemoryStore
	mgr    *session.Manager
	srv    *Server
	cookie *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fake := fakeapi.New()
	t.Cleanup(fake.Close)
	store := session.NewMemoryStore()
	mgr := session.NewManager(store, time.Hour)
	srv := New(Options{
		API:            api.Config{BaseURL: fake.URL()},
		Manager:        mgr,
		Signer:         session.NewSigner("test-secret"),
		SessionTTL:     time.Hour,
		MetricsEnabled: true,
	})
	// every limiter check lands a minute after the previous one
	clock := time.Unix(1_700_000_000, 0)
	srv.limiter.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return &harness{t: t, fake: fake, store: store, mgr: mgr, srv: srv}
}

// do sends a request with the harness cookie, fetching one first for a POST.
// POSTs carry the session's form token unless form sets csrf_token itself.
func (h *harness) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	h.t.Helper()
	if method == http.MethodPost && h.cookie == nil {
		h.do(http.MethodGet, "/login", nil)
	}
	if method == http.MethodPost {
		if form == nil {
			form = url.Values{}
		}
		if _, set := form[csrfField]; !set {
			form.Set(csrfField, h.srv.opts.Signer.FormToken(h.sid()))
		}
	}
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	w := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			h.cookie = c
		}
	}
	return w
}

func (h *harness) login() {
	h.t.Helper()
	w := h.do(http.MethodPost, "/login", url.Values{"password": {"admin123"}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/dashboard" {
		h.t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
}

func (h *harness) sid() string {
	sid, _ := h.srv.opts.Signer.Verify(h.cookie.Value)
	return sid
}

func TestGuardRedirectsAnonymous(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/", "/dashboard", "/plans", "/orders", "/endpoints", "/settings", "/broadcast"} {
		w := h.do(http.MethodGet, path, nil)
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
			t.Errorf("GET %s: %d -> %q", path, w.Code, w.Header().Get("Location"))
		}
	}
	w := h.do(http.MethodPost, "/plans/1/deactivate", nil)
	if w.Code != http.StatusFound {
		t.Errorf("POST while anonymous: %d", w.Code)
	}
	if n := h.fake.Calls("PATCH /plans/{id}"); n != 0 {
		t.Errorf("anonymous mutation reached backend %d times", n)
	}
}

func TestPublicRoutes(t *testing.T) {
	h := newHarness(t)
	if w := h.do(http.MethodGet, "/healthz", nil); w.Code != http.StatusOK {
		t.Errorf("/healthz: %d", w.Code)
	}
	if w := h.do(http.MethodGet, "/metrics", nil); w.Code != http.StatusOK {
		t.Errorf("/metrics: %d", w.Code)
	}
	if w := h.do(http.MethodGet, "/static/style.css", nil); w.Code != http.StatusOK {
		t.Errorf("/static/style.css: %d", w.Code)
	}
	w := h.do(http.MethodGet, "/login", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Admin Login") {
		t.Errorf("/login: %d", w.Code)
	}
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodPost, "/login", url.Values{"password": {"wrong"}})
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "Invalid password") {
		t.Fatalf("bad login: %d %s", w.Code, w.Body.String())
	}
	if _, err := h.store.Load(context.Background(), session.KeyPrefix+":"+h.sid()); err == nil {
		t.Error("token stored after failed login")
	}

	h.login()
	if tok, err := h.store.Load(context.Background(), session.KeyPrefix+":"+h.sid()); err != nil || tok == "" {
		t.Errorf("token not persisted: %v", err)
	}
	w = h.do(http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Total Users") {
		t.Errorf("dashboard: %d", w.Code)
	}
	if w := h.do(http.MethodGet, "/login", nil); w.Code != http.StatusFound {
		t.Errorf("login page while authenticated: %d", w.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	h := newHarness(t)
	fixed := time.Unix(1_700_000_000, 0)
	h.srv.limiter.now = func() time.Time { return fixed }

	h.do(http.MethodPost, "/login", url.Values{"password": {"wrong"}})
	w := h.do(http.MethodPost, "/login", url.Values{"password": {"admin123"}})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second login: %d", w.Code)
	}
	if n := h.fake.Calls("POST /admin/login"); n != 1 {
		t.Errorf("backend saw %d logins", n)
	}
}

func TestLoginLimitedPerClientWithoutCookie(t *testing.T) {
	h := newHarness(t)
	fixed := time.Unix(1_700_000_000, 0)
	h.srv.limiter.now = func() time.Time { return fixed }

	var codes []int
	for i := 0; i < 5; i++ {
		// a fresh cookie and form token for every attempt
		h.cookie = nil
		h.do(http.MethodGet, "/login", nil)
		codes = append(codes, h.do(http.MethodPost, "/login", url.Values{"password": {"guess"}}).Code)
	}
	if codes[0] != http.StatusUnauthorized {
		t.Errorf("first attempt: %d", codes[0])
	}
	for i, code := range codes[1:] {
		if code != http.StatusTooManyRequests {
			t.Errorf("attempt %d: %d, want 429", i+2, code)
		}
	}
	if n := h.fake.Calls("POST /admin/login"); n != 1 {
		t.Errorf("backend saw %d logins", n)
	}
	if n := h.mgr.Live(); n != 0 {
		t.Errorf("%d anonymous sessions kept after rejected logins", n)
	}
}

func TestLoginLimitedPerClient(t *testing.T) {
	h := newHarness(t)
	fixed := time.Unix(1_700_000_000, 0)
	h.srv.limiter.now = func() time.Time { return fixed }

	post := func(remote string) int {
		h.cookie = nil
		h.do(http.MethodGet, "/login", nil)
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(url.Values{
			"password": {"guess"},
			csrfField:  {h.srv.opts.Signer.FormToken(h.sid())},
		}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		// without trusted proxies a forwarded address is ignored
		req.Header.Set("X-Forwarded-For", "198.51.100.1")
		req.RemoteAddr = remote + ":4000"
		req.AddCookie(h.cookie)
		w := httptest.NewRecorder()
		h.srv.Handler().ServeHTTP(w, req)
		return w.Code
	}
	if code := post("203.0.113.7"); code != http.StatusUnauthorized {
		t.Errorf("first client: %d", code)
	}
	if code := post("203.0.113.8"); code != http.StatusUnauthorized {
		t.Errorf("second client limited by the first: %d", code)
	}
	if code := post("203.0.113.7"); code != http.StatusTooManyRequests {
		t.Errorf("repeat from first client: %d", code)
	}
}

func TestPostsRequireFormToken(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.fake.AddPlan(api.Plan{ServerType: "v2ray", DurationDays: 30, IsActive: true})

	tests := []struct {
		desc  string
		token []string
	}{
		{"missing", nil},
		{"empty", []string{""}},
		{"other session", []string{h.srv.opts.Signer.FormToken("someone-else")}},
	}
	for _, tt := range tests {
		w := h.do(http.MethodPost, "/plans/1/deactivate", url.Values{csrfField: tt.token})
		if w.Code != http.StatusForbidden {
			t.Errorf("%s token: %d", tt.desc, w.Code)
		}
	}
	if n := h.fake.Calls("PATCH /plans/{id}"); n != 0 {
		t.Errorf("rejected posts reached the backend %d times", n)
	}

	if w := h.do(http.MethodPost, "/plans/1/deactivate", nil); w.Code != http.StatusSeeOther {
		t.Errorf("post with token: %d", w.Code)
	}
	body := h.do(http.MethodGet, "/plans", nil).Body.String()
	if !strings.Contains(body, `name="csrf_token" value="`+h.srv.opts.Signer.FormToken(h.sid())+`"`) {
		t.Error("forms do not carry the form token")
	}
}

type fixedHealth jobs.BackendStatus

func (f fixedHealth) Status() jobs.BackendStatus {
	return jobs.BackendStatus(f)
}

func TestHealthzReportsBackend(t *testing.T) {
	h := newHarness(t)
	checked := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		desc   string
		health HealthReporter
		want   []string
	}{
		{"no probe", nil, []string{`"status":"ok"`}},
		{"not probed yet", fixedHealth{}, []string{`"status":"ok"`, `"checked":false`}},
		{"up", fixedHealth{Up: true, LastChecked: checked}, []string{`"status":"ok"`, `"up":true`, `"last_checked":"2026-10-18T12:00:00Z"`}},
		{"down", fixedHealth{LastError: "connection refused", LastChecked: checked}, []string{`"status":"degraded"`, `"up":false`, `"error":"connection refused"`}},
	}
	for _, tt := range tests {
		h.srv.opts.Health = tt.health
		w := h.do(http.MethodGet, "/healthz", nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s: %d", tt.desc, w.Code)
		}
		for _, frag := range tt.want {
			if !strings.Contains(w.Body.String(), frag) {
				t.Errorf("%s: body %s lacks %s", tt.desc, w.Body.String(), frag)
			}
		}
	}
}

func TestForgedCookieIsReplaced(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.cookie = &http.Cookie{Name: cookieName, Value: h.sid() + ".deadbeef"}
	w := h.do(http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusFound {
		t.Errorf("forged cookie reached dashboard: %d", w.Code)
	}
	if strings.HasSuffix(h.cookie.Value, ".deadbeef") {
		t.Error("forged cookie not replaced")
	}
}

func TestBackendExpiryRedirectsToLogin(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.do(http.MethodGet, "/plans", nil)
	sid := h.sid()

	h.fake.RevokeAll()
	w := h.do(http.MethodGet, "/plans", nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login?expired=1" {
		t.Fatalf("after revoke: %d -> %q", w.Code, w.Header().Get("Location"))
	}
	if _, err := h.store.Load(context.Background(), session.KeyPrefix+":"+sid); err == nil {
		t.Error("token still stored")
	}
	h.srv.mu.Lock()
	_, kept := h.srv.workspaces[sid]
	h.srv.mu.Unlock()
	if kept {
		t.Error("workspace survived expiry")
	}

	w = h.do(http.MethodGet, "/login?expired=1", nil)
	if !strings.Contains(w.Body.String(), "session expired") {
		t.Errorf("expired notice missing")
	}
	if w := h.do(http.MethodGet, "/dashboard", nil); w.Code != http.StatusFound {
		t.Errorf("dashboard after expiry: %d", w.Code)
	}
}

func TestMutationExpiryRedirects(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.fake.RevokeAll()
	w := h.do(http.MethodPost, "/broadcast", url.Values{"message": {"hi"}, "target": {"all"}, "action": {"send"}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login?expired=1" {
		t.Errorf("broadcast after revoke: %d -> %q", w.Code, w.Header().Get("Location"))
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login()
	w := h.do(http.MethodPost, "/logout", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Fatalf("logout: %d", w.Code)
	}
	if h.mgr.Get(context.Background(), h.sid()).Authenticated() {
		t.Error("still authenticated")
	}
}

func TestSweepDropsWorkspaces(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.do(http.MethodGet, "/plans", nil)
	if n := h.srv.Sweep(-time.Second); n != 1 {
		t.Errorf("swept %d", n)
	}
	if len(h.srv.workspaces) != 0 || h.mgr.Live() != 0 {
		t.Error("state left after sweep")
	}
	// the persisted token brings the session back
	if w := h.do(http.MethodGet, "/dashboard", nil); w.Code != http.StatusOK {
		t.Errorf("dashboard after sweep: %d", w.Code)
	}
}
