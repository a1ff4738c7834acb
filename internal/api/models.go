package api

import (
	"encoding/json"
	"time"
)

const (
	ServerV2Ray     = "v2ray"
	ServerWireGuard = "wireguard"

	TargetAll    = "all"
	TargetActive = "active"

	PaymentCard   = "card"
	PaymentCrypto = "crypto"

	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

type Plan struct {
	ID           uint    `json:"ID"`
	ServerType   string  `json:"server_type"`
	DurationDays int     `json:"duration_days"`
	DataLimitGB  float64 `json:"data_limit_gb"`
	PriceIRR     float64 `json:"price_irr"`
	PriceUSDT    float64 `json:"price_usdt"`
	IsActive     bool    `json:"is_active"`
}

// PlanInput is the body of POST /plans.
type PlanInput struct {
	ServerType   string  `json:"server_type"`
	DurationDays int     `json:"duration_days"`
	DataLimitGB  float64 `json:"data_limit_gb"`
	PriceIRR     float64 `json:"price_irr"`
	PriceUSDT    float64 `json:"price_usdt"`
	IsActive     bool    `json:"is_active"`
}

// PlanPatch is the body of PATCH /plans/{id}; nil fields are left untouched.
type PlanPatch struct {
	DurationDays *int     `json:"duration_days,omitempty"`
	DataLimitGB  *float64 `json:"data_limit_gb,omitempty"`
	PriceIRR     *float64 `json:"price_irr,omitempty"`
	PriceUSDT    *float64 `json:"price_usdt,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

type Order struct {
	ID            uint      `json:"ID"`
	UserID        uint      `json:"user_id,omitempty"`
	TelegramID    int64     `json:"telegram_id,omitempty"`
	PlanID        uint      `json:"plan_id"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// RecentOrder is the shape of Stats.RecentOrders, which the backend joins
// with the user's telegram id.
type RecentOrder struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	TelegramID    int64     `json:"telegram_id"`
	PlanID        uint      `json:"plan_id"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type Stats struct {
	TotalUsers          int64         `json:"total_users"`
	TotalOrders         int64         `json:"total_orders"`
	PaidOrders          int64         `json:"paid_orders"`
	PendingOrders       int64         `json:"pending_orders"`
	ActivePlans         int64         `json:"active_plans"`
	ActiveSubscriptions int64         `json:"active_subscriptions"`
	TotalRevenueIRR     float64       `json:"total_revenue_irr"`
	TotalRevenueUSDT    float64       `json:"total_revenue_usdt"`
	RecentOrders        []RecentOrder `json:"recent_orders"`
}

type Endpoint struct {
	ID       uint   `json:"ID"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	IsActive bool   `json:"is_active"`
}

// EndpointInput is sent whole on both create and update.
type EndpointInput struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	IsActive bool   `json:"is_active"`
}

type Server struct {
	ID          uint   `json:"ID"`
	Name        string `json:"name"`
	ServerType  string `json:"server_type"`
	APIURL      string `json:"api_url"`
	Credentials string `json:"credentials"`
	IsActive    bool   `json:"is_active"`
}

type ServerPatch struct {
	Name        string `json:"name"`
	APIURL      string `json:"api_url"`
	Credentials string `json:"credentials"`
}

// Credentials is the decoded form of Server.Credentials.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DecodeCredentials parses a server's credentials string. Malformed or empty
// input yields zero credentials.
func DecodeCredentials(s string) Credentials {
	var c Credentials
	if s == "" {
		return c
	}
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return Credentials{}
	}
	return c
}

func (c Credentials) Encode() string {
	b, _ := json.Marshal(c)
	return string(b)
}

type Settings struct {
	AdminCardNumber string `json:"admin_card_number"`
	BotName         string `json:"bot_name,omitempty"`
}

type BroadcastRequest struct {
	Message string `json:"message"`
	Target  string `json:"target"`
}

type BroadcastResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}
