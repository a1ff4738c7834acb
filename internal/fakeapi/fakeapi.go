// Package fakeapi is an in-memory stand-in for the sell-bot backend REST
// surface, served over httptest for package tests.
package fakeapi

import (
	"VPN-Admin-dashboard/internal/api"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

const Prefix = "/api/v1"

type failure struct {
	status  int
	message string
}

type Backend struct {
	Password string

	mu        sync.Mutex
	tokens    map[string]bool
	nextID    uint
	plans     []api.Plan
	endpoints []api.Endpoint
	servers   []api.Server
	orders    map[string][]api.Order
	settings  api.Settings
	stats     api.Stats
	result    api.BroadcastResult
	sent      []api.BroadcastRequest
	calls     map[string]int
	failures  map[string]failure

	srv *httptest.Server
}

// New starts a backend that accepts password "admin123".
func New() *Backend {
	b := &Backend{
		Password: "admin123",
		tokens:   make(map[string]bool),
		orders:   make(map[string][]api.Order),
		calls:    make(map[string]int),
		failures: make(map[string]failure),
		settings: api.Settings{BotName: "vpn_sell_bot"},
		nextID:   1,
	}
	mux := http.NewServeMux()
	b.handle(mux, "GET /{$}", false, b.root)
	b.handle(mux, "POST /admin/login", false, b.login)
	b.handle(mux, "GET /admin/stats", true, b.getStats)
	b.handle(mux, "GET /plans", true, b.listPlans)
	b.handle(mux, "POST /plans", true, b.createPlan)
	b.handle(mux, "PATCH /plans/{id}", true, b.updatePlan)
	b.handle(mux, "GET /users/{telegram_id}/orders", true, b.userOrders)
	b.handle(mux, "GET /endpoints", true, b.listEndpoints)
	b.handle(mux, "POST /endpoints", true, b.createEndpoint)
	b.handle(mux, "PATCH /endpoints/{id}", true, b.updateEndpoint)
	b.handle(mux, "DELETE /endpoints/{id}", true, b.deleteEndpoint)
	b.handle(mux, "GET /admin/servers", true, b.listServers)
	b.handle(mux, "PATCH /admin/servers/{id}", true, b.updateServer)
	b.handle(mux, "GET /admin/settings", true, b.getSettings)
	b.handle(mux, "PATCH /admin/settings", true, b.updateSettings)
	b.handle(mux, "POST /admin/broadcast", true, b.broadcast)

	root := http.NewServeMux()
	root.Handle(Prefix+"/", http.StripPrefix(Prefix, mux))
	b.srv = httptest.NewServer(root)
	return b
}

// URL is the API root to configure clients with.
func (b *Backend) URL() string {
	return b.srv.URL + Prefix
}

func (b *Backend) Close() {
	b.srv.Close()
}

// IssueToken returns a token the backend accepts, as if a login succeeded.
func (b *Backend) IssueToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := newToken()
	b.tokens[t] = true
	return t
}

// RevokeAll invalidates every issued token, so the next call answers 401.
func (b *Backend) RevokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]bool)
}

// Calls returns how many requests reached pattern, e.g. "POST /admin/broadcast".
func (b *Backend) Calls(pattern string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[pattern]
}

// Fail makes every request to pattern answer status with an error payload
// until Recover is called. An empty message omits the payload.
func (b *Backend) Fail(pattern string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[pattern] = failure{status: status, message: message}
}

func (b *Backend) Recover(pattern string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, pattern)
}

func (b *Backend) SetStats(s api.Stats) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = s
}

func (b *Backend) SetBroadcastResult(r api.BroadcastResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.result = r
}

func (b *Backend) Broadcasts() []api.BroadcastRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.BroadcastRequest(nil), b.sent...)
}

func (b *Backend) AddOrder(telegramID string, o api.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o.ID == 0 {
		o.ID = b.id()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	b.orders[telegramID] = append(b.orders[telegramID], o)
}

// AddUser registers a telegram id with no orders, so lookups answer [] rather than 404.
func (b *Backend) AddUser(telegramID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.orders[telegramID]; !ok {
		b.orders[telegramID] = []api.Order{}
	}
}

func (b *Backend) AddPlan(p api.Plan) api.Plan {
	b.mu.Lock()
	defer b.mu.Unlock()
	p.ID = b.id()
	b.plans = append(b.plans, p)
	return p
}

func (b *Backend) AddEndpoint(ep api.Endpoint) api.Endpoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	ep.ID = b.id()
	b.endpoints = append(b.endpoints, ep)
	return ep
}

func (b *Backend) AddServer(s api.Server) api.Server {
	b.mu.Lock()
	defer b.mu.Unlock()
	s.ID = b.id()
	b.servers = append(b.servers, s)
	return s
}

func (b *Backend) Servers() []api.Server {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.Server(nil), b.servers...)
}

func (b *Backend) Settings() api.Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings
}

func (b *Backend) id() uint {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Backend) handle(mux *http.ServeMux, pattern string, authed bool, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[pattern]++
		f, failing := b.failures[pattern]
		valid := b.tokens[bearerToken(r)]
		b.mu.Unlock()

		if authed && !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Session expired"})
			return
		}
		if failing {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, map[string]string{"error": f.message})
			return
		}
		h(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseBody(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func bearerToken(r *http.Request) string {
	return strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	return uint(id), err == nil
}

func newToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
