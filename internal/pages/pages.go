// Package pages holds the per-session state of each dashboard page: what is
// loaded, what is being edited and the last action's outcome.
package pages

import (
	"VPN-Admin-dashboard/internal/api"
	"errors"
	"sync"
	"time"
)

// Phase is a page's load/submit state.
type Phase int

const (
	Loading Phase = iota
	Ready
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Submitting:
		return "submitting"
	}
	return "ready"
}

var (
	// ErrBusy is returned when an action is submitted while another one on the
	// same page is still in flight. No request is issued.
	ErrBusy = errors.New("another action is in progress")
	// ErrNotEditing is returned by Save for a row that has no open draft.
	ErrNotEditing = errors.New("row is not being edited")
)

// Toast is a one-shot notification shown after an action.
type Toast struct {
	Success bool
	Message string
}

// freshFor is how long a post-mutation refresh stands in for the next mount.
const freshFor = 5 * time.Second

// base carries the state shared by every page. Its mutex guards the
// embedding controller's fields too; network calls run without it.
type base struct {
	mu      sync.Mutex
	phase   Phase
	gen     uint64
	failed  bool
	freshAt time.Time
	toast   *Toast
	now     func() time.Time
}

// beginLoad starts a new load generation. Completions of older generations
// are discarded by finishLoad.
func (b *base) beginLoad() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	if b.phase != Submitting {
		b.phase = Loading
	}
	return b.gen
}

// finishLoad applies a completed load if it is still the latest one. apply
// runs under the page lock.
func (b *base) finishLoad(gen uint64, err error, apply func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return false
	}
	b.failed = err != nil
	apply()
	if b.phase == Loading {
		b.phase = Ready
	}
	return true
}

func (b *base) startSubmit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.phase == Submitting {
		return ErrBusy
	}
	b.phase = Submitting
	return nil
}

func (b *base) endSubmit(t *Toast) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.phase = Ready
	if t != nil {
		b.toast = t
	}
}

func (b *base) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

// markFresh records that the page was just re-fetched after a mutation, so
// a mount within freshFor does not fetch again.
func (b *base) markFresh() {
	b.mu.Lock()
	b.freshAt = b.clock()
	b.mu.Unlock()
}

func (b *base) takeFresh() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	at := b.freshAt
	b.freshAt = time.Time{}
	return !at.IsZero() && b.clock().Sub(at) < freshFor
}

func (b *base) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Failed reports whether the last load failed.
func (b *base) Failed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed
}

// TakeToast returns the pending notification and clears it.
func (b *base) TakeToast() *Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.toast
	b.toast = nil
	return t
}

// submit runs one mutation: call, then on success a full refresh and a
// success toast, on failure a failure toast. Only a session expiry seen by
// the refresh is reported back once the mutation itself succeeded.
func (b *base) submit(call, refresh func() error, ok, fallback string) error {
	if err := b.startSubmit(); err != nil {
		return err
	}
	if err := call(); err != nil {
		b.endSubmit(failure(err, fallback))
		return err
	}
	err := refresh()
	b.markFresh()
	b.endSubmit(success(ok))
	if errors.Is(err, api.ErrSessionExpired) {
		return err
	}
	return nil
}

func success(msg string) *Toast {
	return &Toast{Success: true, Message: msg}
}

func failure(err error, fallback string) *Toast {
	return &Toast{Message: failureText(err, fallback)}
}

// failureText picks what to show for a failed call: the backend's own message,
// a connection error, or the action's fallback text.
func failureText(err error, fallback string) string {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case api.IsNetwork(err):
		return "Connection error"
	}
	return fallback
}

// Backend is everything the pages call on the sell-bot backend.
// *api.Client satisfies it.
type Backend interface {
	StatsSource
	PlanBackend
	OrderBackend
	EndpointBackend
	SettingsBackend
	BroadcastBackend
}

// Workspace is one browser session's set of pages.
type Workspace struct {
	Dashboard *Dashboard
	Plans     *Plans
	Orders    *Orders
	Endpoints *Endpoints
	Settings  *Settings
	Broadcast *Broadcast
}

func NewWorkspace(b Backend) *Workspace {
	return &Workspace{
		Dashboard: NewDashboard(b),
		Plans:     NewPlans(b),
		Orders:    NewOrders(b),
		Endpoints: NewEndpoints(b),
		Settings:  NewSettings(b),
		Broadcast: NewBroadcast(b),
	}
}
