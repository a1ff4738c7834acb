package fakeapi

import (
	"VPN-Admin-dashboard/internal/api"
	"net/http"
	"strings"
)

func (b *Backend) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Welcome to the VPN Sell Bot API"})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := parseBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	if req.Password != b.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": b.IssueToken(), "message": "Login successful"})
}

func (b *Backend) getStats(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.stats)
}

func (b *Backend) listPlans(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []api.Plan{}
	for _, p := range b.plans {
		if all || p.IsActive {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createPlan(w http.ResponseWriter, r *http.Request) {
	var in api.PlanInput
	if err := parseBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	b.mu.Lock()
	p := api.Plan{
		ID:           b.id(),
		ServerType:   in.ServerType,
		DurationDays: in.DurationDays,
		DataLimitGB:  in.DataLimitGB,
		PriceIRR:     in.PriceIRR,
		PriceUSDT:    in.PriceUSDT,
		IsActive:     in.IsActive,
	}
	b.plans = append(b.plans, p)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) updatePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	var patch api.PlanPatch
	if err := parseBody(r, &patch); err != nil || !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.plans {
		p := &b.plans[i]
		if p.ID != id {
			continue
		}
		if patch.DurationDays != nil {
			p.DurationDays = *patch.DurationDays
		}
		if patch.DataLimitGB != nil {
			p.DataLimitGB = *patch.DataLimitGB
		}
		if patch.PriceIRR != nil {
			p.PriceIRR = *patch.PriceIRR
		}
		if patch.PriceUSDT != nil {
			p.PriceUSDT = *patch.PriceUSDT
		}
		if patch.IsActive != nil {
			p.IsActive = *patch.IsActive
		}
		writeJSON(w, http.StatusOK, *p)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Plan not found"})
}

func (b *Backend) userOrders(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	orders, ok := b.orders[r.PathValue("telegram_id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (b *Backend) listEndpoints(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []api.Endpoint{}
	for _, ep := range b.endpoints {
		if all || ep.IsActive {
			out = append(out, ep)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createEndpoint(w http.ResponseWriter, r *http.Request) {
	var in api.EndpointInput
	if err := parseBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	b.mu.Lock()
	ep := api.Endpoint{ID: b.id(), Name: in.Name, Address: in.Address, IsActive: in.IsActive}
	b.endpoints = append(b.endpoints, ep)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, ep)
}

func (b *Backend) updateEndpoint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	var in api.EndpointInput
	if err := parseBody(r, &in); err != nil || !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.endpoints {
		if b.endpoints[i].ID == id {
			b.endpoints[i].Name = in.Name
			b.endpoints[i].Address = in.Address
			b.endpoints[i].IsActive = in.IsActive
			writeJSON(w, http.StatusOK, b.endpoints[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Endpoint not found"})
}

func (b *Backend) deleteEndpoint(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.endpoints {
		if b.endpoints[i].ID == id {
			b.endpoints = append(b.endpoints[:i], b.endpoints[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Endpoint deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Endpoint not found"})
}

func (b *Backend) listServers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := append([]api.Server{}, b.servers...)
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) updateServer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	var patch api.ServerPatch
	if err := parseBody(r, &patch); err != nil || !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.servers {
		if b.servers[i].ID == id {
			b.servers[i].Name = patch.Name
			b.servers[i].APIURL = patch.APIURL
			b.servers[i].Credentials = patch.Credentials
			writeJSON(w, http.StatusOK, b.servers[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Server not found"})
}

func (b *Backend) getSettings(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.settings)
}

func (b *Backend) updateSettings(w http.ResponseWriter, r *http.Request) {
	var in api.Settings
	if err := parseBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if in.AdminCardNumber != "" {
		b.settings.AdminCardNumber = in.AdminCardNumber
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":           "Settings updated for this session",
		"admin_card_number": b.settings.AdminCardNumber,
	})
}

func (b *Backend) broadcast(w http.ResponseWriter, r *http.Request) {
	var req api.BroadcastRequest
	if err := parseBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Message cannot be empty"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, req)
	writeJSON(w, http.StatusOK, b.result)
}
