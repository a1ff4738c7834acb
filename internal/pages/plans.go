package pages

import (
	"VPN-Admin-dashboard/internal/api"
	"context"
)

type PlanBackend interface {
	ListPlans(ctx context.Context) ([]api.Plan, error)
	CreatePlan(ctx context.Context, in api.PlanInput) (api.Plan, error)
	UpdatePlan(ctx context.Context, id uint, patch api.PlanPatch) (api.Plan, error)
}

// PlanDraft is the editable part of a plan row.
type PlanDraft struct {
	DurationDays int
	DataLimitGB  float64
	PriceIRR     float64
	PriceUSDT    float64
	IsActive     bool
}

func (d PlanDraft) patch() api.PlanPatch {
	return api.PlanPatch{
		DurationDays: &d.DurationDays,
		DataLimitGB:  &d.DataLimitGB,
		PriceIRR:     &d.PriceIRR,
		PriceUSDT:    &d.PriceUSDT,
		IsActive:     &d.IsActive,
	}
}

// DefaultPlan is what the create form starts with.
func DefaultPlan() api.PlanInput {
	return api.PlanInput{ServerType: api.ServerV2Ray, DurationDays: 30, DataLimitGB: 50, IsActive: true}
}

// Plans lists every plan and edits them row by row. Deleting a plan
// deactivates it.
type Plans struct {
	base
	backend    PlanBackend
	plans      []api.Plan
	showCreate bool
	newPlan    api.PlanInput
	drafts     map[uint]*PlanDraft
}

func NewPlans(b PlanBackend) *Plans {
	return &Plans{backend: b, newPlan: DefaultPlan(), drafts: make(map[uint]*PlanDraft)}
}

// Mount loads the page unless a mutation just refreshed it.
func (p *Plans) Mount(ctx context.Context) error {
	if p.takeFresh() {
		return nil
	}
	return p.Load(ctx)
}

func (p *Plans) Load(ctx context.Context) error {
	gen := p.beginLoad()
	plans, err := p.backend.ListPlans(ctx)
	p.finishLoad(gen, err, func() {
		if err != nil {
			plans = nil
		}
		p.plans = plans
	})
	return err
}

// ToggleCreate shows or hides the create form. Hiding it resets the form.
func (p *Plans) ToggleCreate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.showCreate = !p.showCreate
	if !p.showCreate {
		p.newPlan = DefaultPlan()
	}
}

func (p *Plans) Create(ctx context.Context, in api.PlanInput) error {
	p.mu.Lock()
	p.newPlan = in
	p.mu.Unlock()
	return p.submit(func() error {
		if _, err := p.backend.CreatePlan(ctx, in); err != nil {
			return err
		}
		p.mu.Lock()
		p.showCreate = false
		p.newPlan = DefaultPlan()
		p.mu.Unlock()
		return nil
	}, func() error { return p.Load(ctx) }, "Plan created", "Failed to create plan")
}

// StartEdit copies row id into its draft buffer. It reports false for an
// unknown row.
func (p *Plans) StartEdit(id uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pl := range p.plans {
		if pl.ID == id {
			p.drafts[id] = &PlanDraft{
				DurationDays: pl.DurationDays,
				DataLimitGB:  pl.DataLimitGB,
				PriceIRR:     pl.PriceIRR,
				PriceUSDT:    pl.PriceUSDT,
				IsActive:     pl.IsActive,
			}
			return true
		}
	}
	return false
}

// Edit replaces the draft of a row being edited.
func (p *Plans) Edit(id uint, d PlanDraft) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.drafts[id]; !ok {
		return false
	}
	p.drafts[id] = &d
	return true
}

func (p *Plans) Cancel(id uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.drafts, id)
}

// Save submits the row's draft and leaves edit mode on success.
func (p *Plans) Save(ctx context.Context, id uint) error {
	p.mu.Lock()
	d, ok := p.drafts[id]
	var draft PlanDraft
	if ok {
		draft = *d
	}
	p.mu.Unlock()
	if !ok {
		return ErrNotEditing
	}
	return p.submit(func() error {
		if _, err := p.backend.UpdatePlan(ctx, id, draft.patch()); err != nil {
			return err
		}
		p.Cancel(id)
		return nil
	}, func() error { return p.Load(ctx) }, "Plan updated", "Failed to update plan")
}

// Deactivate is the plans page's delete: the plan stays listed as inactive.
func (p *Plans) Deactivate(ctx context.Context, id uint) error {
	inactive := false
	return p.submit(func() error {
		_, err := p.backend.UpdatePlan(ctx, id, api.PlanPatch{IsActive: &inactive})
		return err
	}, func() error { return p.Load(ctx) }, "Plan deactivated", "Failed to deactivate plan")
}

type PlanRow struct {
	api.Plan
	Editing bool
	Draft   PlanDraft
}

type PlansView struct {
	Phase      Phase
	Failed     bool
	Rows       []PlanRow
	ShowCreate bool
	NewPlan    api.PlanInput
}

func (p *Plans) View() PlansView {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := PlansView{Phase: p.phase, Failed: p.failed, ShowCreate: p.showCreate, NewPlan: p.newPlan}
	for _, pl := range p.plans {
		row := PlanRow{Plan: pl}
		if d, ok := p.drafts[pl.ID]; ok {
			row.Editing = true
			row.Draft = *d
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}
