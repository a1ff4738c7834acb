package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Login exchanges the dashboard password for a session token. It does not
// need a session.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	resp, err := c.send(ctx, http.MethodPost, "/admin/login", map[string]string{"password": password}, false)
	if err != nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	if !resp.OK() {
		return "", resp.asError()
	}
	if err := resp.Decode(&out); err != nil || out.Token == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}

// Ping checks that the backend answers on its API root.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, "/", nil, false)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return resp.asError()
	}
	return nil
}

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.call(ctx, http.MethodGet, "/admin/stats", nil, &s)
	return s, err
}

// ListPlans returns every plan, deactivated ones included.
func (c *Client) ListPlans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	err := c.call(ctx, http.MethodGet, "/plans?all=true", nil, &plans)
	return plans, err
}

func (c *Client) CreatePlan(ctx context.Context, in PlanInput) (Plan, error) {
	var p Plan
	err := c.call(ctx, http.MethodPost, "/plans", in, &p)
	return p, err
}

func (c *Client) UpdatePlan(ctx context.Context, id uint, patch PlanPatch) (Plan, error) {
	var p Plan
	err := c.call(ctx, http.MethodPatch, "/plans/"+idPath(id), patch, &p)
	return p, err
}

func (c *Client) UserOrders(ctx context.Context, telegramID string) ([]Order, error) {
	var orders []Order
	err := c.call(ctx, http.MethodGet, "/users/"+url.PathEscape(telegramID)+"/orders", nil, &orders)
	return orders, err
}

func (c *Client) ListEndpoints(ctx context.Context) ([]Endpoint, error) {
	var eps []Endpoint
	err := c.call(ctx, http.MethodGet, "/endpoints?all=true", nil, &eps)
	return eps, err
}

func (c *Client) CreateEndpoint(ctx context.Context, in EndpointInput) (Endpoint, error) {
	var ep Endpoint
	err := c.call(ctx, http.MethodPost, "/endpoints", in, &ep)
	return ep, err
}

func (c *Client) UpdateEndpoint(ctx context.Context, id uint, in EndpointInput) (Endpoint, error) {
	var ep Endpoint
	err := c.call(ctx, http.MethodPatch, "/endpoints/"+idPath(id), in, &ep)
	return ep, err
}

func (c *Client) DeleteEndpoint(ctx context.Context, id uint) error {
	return c.call(ctx, http.MethodDelete, "/endpoints/"+idPath(id), nil, nil)
}

func (c *Client) ListServers(ctx context.Context) ([]Server, error) {
	var servers []Server
	err := c.call(ctx, http.MethodGet, "/admin/servers", nil, &servers)
	return servers, err
}

func (c *Client) UpdateServer(ctx context.Context, id uint, patch ServerPatch) (Server, error) {
	var s Server
	err := c.call(ctx, http.MethodPatch, "/admin/servers/"+idPath(id), patch, &s)
	return s, err
}

func (c *Client) GetSettings(ctx context.Context) (Settings, error) {
	var s Settings
	err := c.call(ctx, http.MethodGet, "/admin/settings", nil, &s)
	return s, err
}

func (c *Client) UpdateSettings(ctx context.Context, s Settings) error {
	return c.call(ctx, http.MethodPatch, "/admin/settings", map[string]string{"admin_card_number": s.AdminCardNumber}, nil)
}

func (c *Client) Broadcast(ctx context.Context, req BroadcastRequest) (BroadcastResult, error) {
	var res BroadcastResult
	err := c.call(ctx, http.MethodPost, "/admin/broadcast", req, &res)
	return res, err
}

func idPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
