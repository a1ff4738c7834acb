package pages

import (
	"VPN-Admin-dashboard/internal/api"
	"context"
)

type EndpointBackend interface {
	ListEndpoints(ctx context.Context) ([]api.Endpoint, error)
	CreateEndpoint(ctx context.Context, in api.EndpointInput) (api.Endpoint, error)
	UpdateEndpoint(ctx context.Context, id uint, in api.EndpointInput) (api.Endpoint, error)
	DeleteEndpoint(ctx context.Context, id uint) error
}

func newEndpointInput() api.EndpointInput {
	return api.EndpointInput{IsActive: true}
}

// Endpoints manages the WireGuard addresses handed out to users. Every row
// keeps its own draft while edited.
type Endpoints struct {
	base
	backend   EndpointBackend
	endpoints []api.Endpoint
	creating  bool
	newDraft  api.EndpointInput
	drafts    map[uint]*api.EndpointInput
}

func NewEndpoints(b EndpointBackend) *Endpoints {
	return &Endpoints{backend: b, newDraft: newEndpointInput(), drafts: make(map[uint]*api.EndpointInput)}
}

func (e *Endpoints) Mount(ctx context.Context) error {
	if e.takeFresh() {
		return nil
	}
	return e.Load(ctx)
}

func (e *Endpoints) Load(ctx context.Context) error {
	gen := e.beginLoad()
	eps, err := e.backend.ListEndpoints(ctx)
	e.finishLoad(gen, err, func() {
		if err != nil {
			eps = nil
		}
		e.endpoints = eps
	})
	return err
}

// StartCreate opens an empty create draft.
func (e *Endpoints) StartCreate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.creating = true
	e.newDraft = newEndpointInput()
}

func (e *Endpoints) CancelCreate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.creating = false
	e.newDraft = newEndpointInput()
}

func (e *Endpoints) Create(ctx context.Context, in api.EndpointInput) error {
	e.mu.Lock()
	e.newDraft = in
	e.mu.Unlock()
	return e.submit(func() error {
		if _, err := e.backend.CreateEndpoint(ctx, in); err != nil {
			return err
		}
		e.CancelCreate()
		return nil
	}, func() error { return e.Load(ctx) }, "Endpoint created successfully", "Failed to create endpoint")
}

func (e *Endpoints) StartEdit(id uint) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ep := range e.endpoints {
		if ep.ID == id {
			e.drafts[id] = &api.EndpointInput{Name: ep.Name, Address: ep.Address, IsActive: ep.IsActive}
			return true
		}
	}
	return false
}

func (e *Endpoints) Edit(id uint, in api.EndpointInput) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.drafts[id]; !ok {
		return false
	}
	e.drafts[id] = &in
	return true
}

func (e *Endpoints) Cancel(id uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.drafts, id)
}

func (e *Endpoints) Save(ctx context.Context, id uint) error {
	e.mu.Lock()
	d, ok := e.drafts[id]
	var draft api.EndpointInput
	if ok {
		draft = *d
	}
	e.mu.Unlock()
	if !ok {
		return ErrNotEditing
	}
	return e.submit(func() error {
		if _, err := e.backend.UpdateEndpoint(ctx, id, draft); err != nil {
			return err
		}
		e.Cancel(id)
		return nil
	}, func() error { return e.Load(ctx) }, "Endpoint updated successfully", "Failed to update endpoint")
}

func (e *Endpoints) Delete(ctx context.Context, id uint) error {
	return e.submit(func() error {
		if err := e.backend.DeleteEndpoint(ctx, id); err != nil {
			return err
		}
		e.Cancel(id)
		return nil
	}, func() error { return e.Load(ctx) }, "Endpoint deleted", "Failed to delete endpoint")
}

type EndpointRow struct {
	api.Endpoint
	Editing bool
	Draft   api.EndpointInput
}

type EndpointsView struct {
	Phase    Phase
	Failed   bool
	Rows     []EndpointRow
	Creating bool
	NewDraft api.EndpointInput
}

func (e *Endpoints) View() EndpointsView {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := EndpointsView{Phase: e.phase, Failed: e.failed, Creating: e.creating, NewDraft: e.newDraft}
	for _, ep := range e.endpoints {
		row := EndpointRow{Endpoint: ep}
		if d, ok := e.drafts[ep.ID]; ok {
			row.Editing = true
			row.Draft = *d
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}
