package api

import "testing"

func TestRouteOf(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/plans?all=true", "/plans"},
		{"/plans/12", "/plans/:id"},
		{"/users/123456789/orders", "/users/:id/orders"},
		{"/admin/servers/3", "/admin/servers/:id"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := routeOf(tt.in); got != tt.want {
			t.Errorf("routeOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
