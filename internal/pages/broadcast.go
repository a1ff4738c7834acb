package pages

import (
	"VPN-Admin-dashboard/internal/api"
	"VPN-Admin-dashboard/internal/format"
	"context"
	"html/template"
	"strings"
)

type BroadcastBackend interface {
	Broadcast(ctx context.Context, req api.BroadcastRequest) (api.BroadcastResult, error)
}

// NormalizeTarget maps anything but "active" to "all".
func NormalizeTarget(target string) string {
	if target == api.TargetActive {
		return api.TargetActive
	}
	return api.TargetAll
}

// Broadcast composes a one-shot message to the bot's users and keeps the
// backend's delivery counts.
type Broadcast struct {
	base
	backend BroadcastBackend
	message string
	target  string
	result  *api.BroadcastResult
	errText string
}

func NewBroadcast(b BroadcastBackend) *Broadcast {
	bc := &Broadcast{backend: b, target: api.TargetAll}
	bc.phase = Ready
	return bc
}

// Draft stores the message being composed without sending it.
func (b *Broadcast) Draft(message, target string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.message = message
	b.target = NormalizeTarget(target)
}

// Send posts message to the target audience in a single request. A blank
// message is ignored. On success the composed message is cleared.
func (b *Broadcast) Send(ctx context.Context, message, target string) error {
	target = NormalizeTarget(target)
	b.Draft(message, target)
	if strings.TrimSpace(message) == "" {
		return nil
	}
	if err := b.startSubmit(); err != nil {
		return err
	}
	b.mu.Lock()
	b.result = nil
	b.errText = ""
	b.mu.Unlock()

	res, err := b.backend.Broadcast(ctx, api.BroadcastRequest{Message: message, Target: target})

	b.mu.Lock()
	if err != nil {
		b.errText = broadcastFailure(err)
	} else {
		b.result = &res
		b.message = ""
	}
	b.mu.Unlock()
	b.endSubmit(nil)
	return err
}

func broadcastFailure(err error) string {
	if api.IsNetwork(err) {
		return "Failed to connect to backend"
	}
	return failureText(err, "Unknown error")
}

type BroadcastView struct {
	Phase   Phase
	Message string
	Target  string
	Preview template.HTML
	Result  *api.BroadcastResult
	Error   string
}

func (b *Broadcast) View() BroadcastView {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := BroadcastView{Phase: b.phase, Message: b.message, Target: b.target, Error: b.errText}
	if b.result != nil {
		r := *b.result
		v.Result = &r
	}
	v.Preview = format.Markdown(b.message)
	return v
}
