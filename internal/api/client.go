package api

import (
	"VPN-Admin-dashboard/internal/metrics"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Authenticator is the session context a Client acts for.
type Authenticator interface {
	Token() string
	// Expire clears the session after the backend rejected token.
	Expire(ctx context.Context, token string)
}

type Config struct {
	// BaseURL is the API root, e.g. http://localhost:3000/api/v1.
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls the sell-bot backend on behalf of one session. It is cheap
// to construct; build one per request.
type Client struct {
	base string
	http *http.Client
	auth Authenticator
}

func New(cfg Config, auth Authenticator) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		http: hc,
		auth: auth,
	}
}

type Response struct {
	Status int
	Body   []byte
}

func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

func (r *Response) Decode(v interface{}) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// errorMessage returns the backend's {"error": "..."} field, if any.
func (r *Response) errorMessage() string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(r.Body, &payload) != nil {
		return ""
	}
	return payload.Error
}

func (r *Response) asError() *APIError {
	return &APIError{Status: r.Status, Message: r.errorMessage()}
}

// Do sends an authenticated request. A 401 expires the session and returns
// ErrSessionExpired; other non-2xx responses are returned for the caller to
// inspect.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	return c.send(ctx, method, path, body, true)
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, authed bool) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	var token string
	if authed && c.auth != nil {
		token = c.auth.Token()
		req.Header.Set("Authorization", "Bearer "+token)
	}

	route := routeOf(path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveBackend(method, route, 0, time.Since(start))
		return nil, &NetworkError{Op: method + " " + route, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	metrics.ObserveBackend(method, route, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &NetworkError{Op: method + " " + route, Err: err}
	}

	if authed && resp.StatusCode == http.StatusUnauthorized {
		if c.auth != nil {
			c.auth.Expire(ctx, token)
		}
		metrics.SessionExpiries.Inc()
		return nil, ErrSessionExpired
	}
	return &Response{Status: resp.StatusCode, Body: data}, nil
}

// call runs an authenticated request and decodes a 2xx body into out.
func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	resp, err := c.Do(ctx, method, path, in)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return resp.asError()
	}
	if out == nil {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, routeOf(path), err)
	}
	return nil
}

// routeOf turns a request path into a low-cardinality metrics label.
func routeOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && isDigits(p) {
			parts[i] = ":id"
		}
	}
	route := strings.Join(parts, "/")
	if route == "" {
		return "/"
	}
	return route
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
