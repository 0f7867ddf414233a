// Package leads implements the sales pipeline bounded context.
package leads

import (
	"context"
	"strings"

	"upboost_crm_backend/internal/leads/domain"
	"upboost_crm_backend/internal/leads/repository"
	"upboost_crm_backend/platform/apperr"
	"upboost_crm_backend/platform/phone"
	"upboost_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Store is the subset of the leads repository needed by the reconciler.
type Store interface {
	FindActiveByPhone(ctx context.Context, phone string) (*repository.Lead, error)
	Create(ctx context.Context, lead *repository.Lead) error
	Update(ctx context.Context, id uuid.UUID, fields repository.UpdateFields) (*repository.Lead, error)
}

// OwnerResolver picks the owner for leads that arrive without one.
type OwnerResolver interface {
	ResolveDefaultOwner(ctx context.Context) (uuid.UUID, error)
}

// Policy tunes reconciliation per webhook provider. Chat providers send
// reliable contact names, messaging gateways often send push names that
// must not overwrite curated data.
type Policy struct {
	UpdateName bool
	// CreateOnly intakes never touch an existing lead. Used by the
	// dedicated new-contact flow so repeated signups cannot churn the
	// pipeline.
	CreateOnly bool
}

// Input is a provider-agnostic contact extracted from a webhook payload.
type Input struct {
	Name       string
	Phone      string
	Email      string
	SourceHint string
}

// Actions describing what reconciliation did to the pipeline.
const (
	ActionCreated       = "created"
	ActionMoved         = "moved"
	ActionUpdated       = "updated"
	ActionReactivated   = "reactivated"
	ActionAlreadyExists = "already_exists"
)

// Result reports the reconciled lead and how it was affected.
type Result struct {
	Lead          *repository.Lead
	Action        string
	Created       bool
	StageMoved    bool
	Reactivated   bool
	PreviousStage string
	MappedSource  string
}

// Reconciler merges inbound webhook contacts into the lead pipeline.
type Reconciler struct {
	store  Store
	owners OwnerResolver
	newID  func() uuid.UUID
}

// NewReconciler creates a lead reconciler.
func NewReconciler(store Store, owners OwnerResolver) *Reconciler {
	return &Reconciler{store: store, owners: owners, newID: uuid.New}
}

// Reconcile matches the contact to an active lead by normalized phone and
// either creates a new lead or merges the payload into the existing one.
//
// Merge rules:
//   - Ownership never changes.
//   - A lead archived off the board comes back at NOVO_LEAD with its
//     name and owner untouched.
//   - A protected stage (booked or later) is never regressed.
//   - PERDIDO leads move back into negotiation and lose their lost
//     reason.
//   - NOVO_LEAD moves to EM_NEGOCIACAO: a second contact means the
//     conversation is live.
//   - Source only changes to a classified value, never back to OUTRO.
func (r *Reconciler) Reconcile(ctx context.Context, policy Policy, in Input) (*Result, error) {
	digits := phone.Digits(in.Phone)
	if digits == "" {
		return nil, apperr.Validation("phone is required")
	}

	existing, err := r.store.FindActiveByPhone(ctx, digits)
	if err != nil {
		return nil, err
	}

	name := sanitize.Text(in.Name)
	source := domain.ClassifySource(in.SourceHint)

	if existing == nil {
		return r.create(ctx, digits, name, in.Email, source)
	}
	if policy.CreateOnly {
		return &Result{Lead: existing, Action: ActionAlreadyExists}, nil
	}
	return r.merge(ctx, existing, policy, name, in.Email, source)
}

func (r *Reconciler) create(ctx context.Context, digits, name, email, source string) (*Result, error) {
	ownerID, err := r.owners.ResolveDefaultOwner(ctx)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = domain.DefaultLeadName
	}

	lead := &repository.Lead{
		ID:         r.newID(),
		Name:       name,
		Phone:      digits,
		Source:     source,
		Plan:       domain.DefaultPlan,
		Stage:      domain.StageNovoLead,
		InPipeline: true,
		OwnerID:    ownerID,
	}
	if trimmed := strings.TrimSpace(email); trimmed != "" {
		lead.Email = &trimmed
	}

	if err := r.store.Create(ctx, lead); err != nil {
		return nil, err
	}

	return &Result{Lead: lead, Action: ActionCreated, Created: true, MappedSource: source}, nil
}

func (r *Reconciler) merge(ctx context.Context, existing *repository.Lead, policy Policy, name, email, source string) (*Result, error) {
	var fields repository.UpdateFields
	result := &Result{Action: ActionUpdated, PreviousStage: existing.Stage, MappedSource: source}

	if !existing.InPipeline {
		// Archived leads come back onto the board at the top of the
		// funnel. Name and ownership stay as the operator left them.
		inPipeline := true
		stage := domain.StageNovoLead
		fields.InPipeline = &inPipeline
		fields.Stage = &stage
		fields.ClearLost = true
		result.Action = ActionReactivated
		result.Reactivated = true
		result.StageMoved = existing.Stage != domain.StageNovoLead

		updated, err := r.store.Update(ctx, existing.ID, fields)
		if err != nil {
			return nil, err
		}
		result.Lead = updated
		return result, nil
	}

	if policy.UpdateName && name != "" && name != domain.DefaultLeadName && name != existing.Name {
		fields.Name = &name
	}
	if trimmed := strings.TrimSpace(email); trimmed != "" && (existing.Email == nil || *existing.Email != trimmed) {
		fields.Email = &trimmed
	}
	if source != domain.SourceOutro && source != existing.Source {
		fields.Source = &source
	}

	switch {
	case existing.Stage == domain.StagePerdido:
		stage := domain.StageEmNegociacao
		fields.Stage = &stage
		fields.ClearLost = true
		result.Action = ActionMoved
		result.StageMoved = true
	case domain.IsProtectedStage(existing.Stage):
		// Stage untouched. The lead is in active commercial work.
	case existing.Stage == domain.StageNovoLead:
		stage := domain.StageEmNegociacao
		fields.Stage = &stage
		result.Action = ActionMoved
		result.StageMoved = true
	}

	updated, err := r.store.Update(ctx, existing.ID, fields)
	if err != nil {
		return nil, err
	}

	result.Lead = updated
	return result, nil
}
