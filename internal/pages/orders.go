package pages

import (
	"VPN-Admin-dashboard/internal/api"
	"context"
	"errors"
	"strings"
	"sync"
)

type OrderBackend interface {
	UserOrders(ctx context.Context, telegramID string) ([]api.Order, error)
}

// OrdersState is where the lookup page is. Prompt and NoOrders are distinct:
// the first means nothing was searched yet.
type OrdersState int

const (
	Prompt OrdersState = iota
	Searching
	Results
	NoOrders
)

func (s OrdersState) String() string {
	return [...]string{"prompt", "searching", "results", "no-orders"}[s]
}

// Orders looks up a user's orders by telegram id. It fetches nothing until a
// search is submitted.
type Orders struct {
	mu      sync.Mutex
	backend OrderBackend
	gen     uint64
	state   OrdersState
	query   string
	orders  []api.Order
	failed  bool
	message string
}

func NewOrders(b OrderBackend) *Orders {
	return &Orders{backend: b}
}

// Search runs a lookup for telegramID. A blank id is ignored. A newer search
// supersedes an older one still in flight.
func (o *Orders) Search(ctx context.Context, telegramID string) error {
	telegramID = strings.TrimSpace(telegramID)
	if telegramID == "" {
		return nil
	}
	o.mu.Lock()
	o.gen++
	gen := o.gen
	o.state = Searching
	o.query = telegramID
	o.mu.Unlock()

	orders, err := o.backend.UserOrders(ctx, telegramID)

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		return err
	}
	o.failed = false
	o.message = ""
	o.orders = nil
	switch {
	case err == nil && len(orders) > 0:
		o.state = Results
		o.orders = orders
	case err == nil, api.IsNotFound(err):
		o.state = NoOrders
	case errors.Is(err, api.ErrSessionExpired):
		o.state = Prompt
	default:
		o.state = NoOrders
		o.failed = true
		o.message = failureText(err, "Failed to load orders")
	}
	if api.IsNotFound(err) {
		return nil
	}
	return err
}

// Reset returns the page to the prompt.
func (o *Orders) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	o.state = Prompt
	o.query = ""
	o.orders = nil
	o.failed = false
	o.message = ""
}

type OrdersView struct {
	State   OrdersState
	Query   string
	Orders  []api.Order
	Failed  bool
	Message string
}

func (o *Orders) View() OrdersView {
	o.mu.Lock()
	defer o.mu.Unlock()
	return OrdersView{
		State:   o.state,
		Query:   o.query,
		Orders:  append([]api.Order(nil), o.orders...),
		Failed:  o.failed,
		Message: o.message,
	}
}
