package web

import (
	"VPN-Admin-dashboard/internal/api"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestPlansPage(t *testing.T) {
	h := newHarness(t)
	h.login()

	w := h.do(http.MethodPost, "/plans", url.Values{
		"server_type":   {"v2ray"},
		"duration_days": {"30"},
		"data_limit_gb": {"50"},
		"price_irr":     {"100000"},
		"price_usdt":    {"2.5"},
		"is_active":     {"true"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	body := h.do(http.MethodGet, "/plans", nil).Body.String()
	for _, want := range []string{"100,000 IRR / $2.50", "30 Days", "50 GB", "Plan created"} {
		if !strings.Contains(body, want) {
			t.Errorf("plans page missing %q", want)
		}
	}
	if n := h.fake.Calls("GET /plans"); n != 1 {
		t.Errorf("GET /plans called %d times, want the single post-create refresh", n)
	}

	h.do(http.MethodPost, "/plans/1/deactivate", nil)
	body = h.do(http.MethodGet, "/plans", nil).Body.String()
	if !strings.Contains(body, "Disabled") || !strings.Contains(body, "#1") {
		t.Errorf("deactivated plan not listed as disabled")
	}
}

func TestPlanEditThroughForms(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.fake.AddPlan(api.Plan{ServerType: "wireguard", DurationDays: 30, DataLimitGB: 10, PriceIRR: 5000, PriceUSDT: 1, IsActive: true})
	h.do(http.MethodGet, "/plans", nil)

	h.do(http.MethodPost, "/plans/1/edit", nil)
	if body := h.do(http.MethodGet, "/plans", nil).Body.String(); !strings.Contains(body, `action="/plans/1/save"`) {
		t.Fatal("row not in edit mode")
	}
	w := h.do(http.MethodPost, "/plans/1/save", url.Values{
		"duration_days": {"90"}, "data_limit_gb": {"10"}, "price_irr": {"5000"}, "price_usdt": {"1"}, "is_active": {"true"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("save: %d", w.Code)
	}
	body := h.do(http.MethodGet, "/plans", nil).Body.String()
	if !strings.Contains(body, "90 Days") || strings.Contains(body, `action="/plans/1/save"`) {
		t.Errorf("edit not applied")
	}
	if w := h.do(http.MethodPost, "/plans/abc/edit", nil); w.Code != http.StatusNotFound {
		t.Errorf("bad id: %d", w.Code)
	}
}

func TestOrdersPage(t *testing.T) {
	h := newHarness(t)
	h.login()
	body := h.do(http.MethodGet, "/orders", nil).Body.String()
	if !strings.Contains(body, "Enter a Telegram ID") {
		t.Errorf("prompt missing")
	}
	if n := h.fake.Calls("GET /users/{telegram_id}/orders"); n != 0 {
		t.Errorf("orders fetched on mount")
	}

	body = h.do(http.MethodGet, "/orders?telegram_id=555", nil).Body.String()
	if !strings.Contains(body, "No orders found for 555") {
		t.Errorf("no-orders state missing")
	}

	h.fake.AddOrder("777", api.Order{PlanID: 3, Amount: 250000, PaymentMethod: "card", PaymentStatus: "paid"})
	body = h.do(http.MethodGet, "/orders?telegram_id=777", nil).Body.String()
	if !strings.Contains(body, "250,000") {
		t.Errorf("order row missing")
	}
}

func TestOrdersRevisitShowsPrompt(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.fake.AddOrder("777", api.Order{PlanID: 3, Amount: 250000, PaymentMethod: "card", PaymentStatus: "paid"})
	if body := h.do(http.MethodGet, "/orders?telegram_id=777", nil).Body.String(); !strings.Contains(body, "250,000") {
		t.Fatalf("order row missing")
	}
	h.do(http.MethodGet, "/dashboard", nil)

	for _, path := range []string{"/orders", "/orders?telegram_id=", "/orders?telegram_id=%20%20"} {
		body := h.do(http.MethodGet, path, nil).Body.String()
		if !strings.Contains(body, "Enter a Telegram ID") || strings.Contains(body, "250,000") {
			t.Errorf("GET %s kept the previous results", path)
		}
	}
	if n := h.fake.Calls("GET /users/{telegram_id}/orders"); n != 1 {
		t.Errorf("backend saw %d lookups", n)
	}
}

func TestEndpointsPage(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.do(http.MethodPost, "/endpoints/new", nil)
	w := h.do(http.MethodPost, "/endpoints", url.Values{"name": {"de-1"}, "address": {"1.2.3.4:51820"}, "is_active": {"true"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create: %d", w.Code)
	}
	body := h.do(http.MethodGet, "/endpoints", nil).Body.String()
	if !strings.Contains(body, "1.2.3.4:51820") || !strings.Contains(body, "Endpoint created successfully") {
		t.Errorf("endpoint missing")
	}
	h.do(http.MethodPost, "/endpoints/1/delete", nil)
	if body := h.do(http.MethodGet, "/endpoints", nil).Body.String(); strings.Contains(body, "1.2.3.4:51820") {
		t.Errorf("endpoint not deleted")
	}
}

func TestSettingsPage(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.fake.AddServer(api.Server{Name: "Marzban", ServerType: "v2ray", APIURL: "https://panel", Credentials: `{"username":"root","password":"s3cret"}`})

	body := h.do(http.MethodGet, "/settings", nil).Body.String()
	if strings.Contains(body, "s3cret") {
		t.Error("password shown before reveal")
	}
	if !strings.Contains(body, "@vpn_sell_bot") {
		t.Error("bot name missing")
	}
	h.do(http.MethodPost, "/settings/servers/1/reveal", nil)
	if body := h.do(http.MethodGet, "/settings", nil).Body.String(); !strings.Contains(body, "s3cret") {
		t.Error("password hidden after reveal")
	}

	h.do(http.MethodPost, "/settings/card", url.Values{"admin_card_number": {"6037-0000-1111-2222"}})
	if got := h.fake.Settings().AdminCardNumber; got != "6037-0000-1111-2222" {
		t.Errorf("card = %q", got)
	}
}

func TestBroadcastPage(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.fake.SetBroadcastResult(api.BroadcastResult{Sent: 9, Failed: 1, Total: 10})

	h.do(http.MethodPost, "/broadcast", url.Values{"message": {"  "}, "target": {"active"}, "action": {"send"}})
	if n := h.fake.Calls("POST /admin/broadcast"); n != 0 {
		t.Fatalf("blank broadcast sent %d requests", n)
	}

	h.do(http.MethodPost, "/broadcast", url.Values{"message": {"**Hi**"}, "target": {"active"}, "action": {"preview"}})
	if body := h.do(http.MethodGet, "/broadcast", nil).Body.String(); !strings.Contains(body, "<strong>Hi</strong>") {
		t.Errorf("preview missing")
	}
	if n := h.fake.Calls("POST /admin/broadcast"); n != 0 {
		t.Fatalf("preview sent %d requests", n)
	}

	h.do(http.MethodPost, "/broadcast", url.Values{"message": {"Hi"}, "target": {"active"}, "action": {"send"}})
	if n := h.fake.Calls("POST /admin/broadcast"); n != 1 {
		t.Fatalf("requests = %d", n)
	}
	body := h.do(http.MethodGet, "/broadcast", nil).Body.String()
	for _, want := range []string{"<strong>10</strong>", "<strong>9</strong>", "<strong>1</strong>"} {
		if !strings.Contains(body, want) {
			t.Errorf("result missing %q", want)
		}
	}
}
