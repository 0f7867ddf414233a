// Package service implements the pipeline board operations for leads.
package service

import (
	"context"
	"strings"

	"upboost_crm_backend/internal/events"
	"upboost_crm_backend/internal/leads/domain"
	"upboost_crm_backend/internal/leads/repository"
	"upboost_crm_backend/internal/leads/transport"
	"upboost_crm_backend/internal/realtime"
	"upboost_crm_backend/platform/apperr"
	"upboost_crm_backend/platform/phone"
	"upboost_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// OwnerResolver picks the owner for leads created without one.
type OwnerResolver interface {
	ResolveDefaultOwner(ctx context.Context) (uuid.UUID, error)
}

// Service implements lead pipeline operations for the back office.
type Service struct {
	repo        *repository.Repository
	owners      OwnerResolver
	bus         events.Bus
	broadcaster *realtime.Broadcaster
}

// New creates the leads service.
func New(repo *repository.Repository, owners OwnerResolver) *Service {
	return &Service{repo: repo, owners: owners}
}

// SetEventBus wires the domain event bus.
func (s *Service) SetEventBus(bus events.Bus) {
	s.bus = bus
}

// SetBroadcaster wires the cache-invalidation broadcaster.
func (s *Service) SetBroadcaster(b *realtime.Broadcaster) {
	s.broadcaster = b
}

// Repository exposes the repository for cross-module wiring.
func (s *Service) Repository() *repository.Repository {
	return s.repo
}

// List returns leads for the pipeline board.
func (s *Service) List(ctx context.Context, query transport.ListLeadsQuery) ([]repository.Lead, error) {
	if query.Stage != "" && !domain.IsKnownStage(query.Stage) {
		return nil, apperr.Validation("unknown pipeline stage")
	}
	return s.repo.List(ctx, repository.ListParams{
		Stage:           query.Stage,
		Search:          strings.TrimSpace(query.Search),
		IncludeArchived: query.IncludeArchived,
		Limit:           query.Limit,
		Offset:          query.Offset,
	})
}

// Get returns one lead by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds a lead through the back office. Unlike webhook ingestion this
// path trusts the operator: explicit source, plan, and value are accepted.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (*repository.Lead, error) {
	digits := phone.Digits(req.Phone)
	if digits == "" {
		return nil, apperr.Validation("phone is required")
	}

	duplicate, err := s.repo.FindActiveByPhone(ctx, digits)
	if err != nil {
		return nil, err
	}
	if duplicate != nil {
		return nil, apperr.Conflict("a lead with this phone already exists").
			WithDetails(map[string]string{"leadId": duplicate.ID.String()})
	}

	ownerID, err := s.resolveOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	source := domain.ClassifySource(req.Source)
	plan := strings.TrimSpace(req.Plan)
	if plan == "" {
		plan = domain.DefaultPlan
	}

	lead := &repository.Lead{
		ID:         uuid.New(),
		Name:       sanitize.Text(req.Name),
		Phone:      digits,
		Email:      req.Email,
		Source:     source,
		Plan:       plan,
		ValueCents: req.ValueCents,
		Stage:      domain.StageNovoLead,
		InPipeline: true,
		OwnerID:    ownerID,
		Notes:      sanitize.TextPtr(req.Notes),
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadCreated{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			OwnerID:   lead.OwnerID,
			Name:      lead.Name,
			Phone:     lead.Phone,
			Source:    lead.Source,
			Stage:     lead.Stage,
		})
	}
	s.broadcaster.Broadcast(ctx, realtime.ResourceLeads, realtime.KindInsert)

	return lead, nil
}

// Update applies a partial edit to a lead's descriptive fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (*repository.Lead, error) {
	fields := repository.UpdateFields{
		Email:      req.Email,
		Plan:       req.Plan,
		ValueCents: req.ValueCents,
		Notes:      sanitize.TextPtr(req.Notes),
		InPipeline: req.InPipeline,
	}
	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		fields.Name = &name
	}

	lead, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(ctx, realtime.ResourceLeads, realtime.KindUpdate)
	return lead, nil
}

// UpdateStage moves a lead between pipeline stages. Moving to PERDIDO
// requires a lost reason; leaving PERDIDO clears it.
func (s *Service) UpdateStage(ctx context.Context, id uuid.UUID, req transport.UpdateStageRequest) (*repository.Lead, error) {
	if !domain.IsKnownStage(req.Stage) {
		return nil, apperr.Validation("unknown pipeline stage")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.DeletedAt != nil {
		return nil, apperr.NotFound("lead not found")
	}

	fields := repository.UpdateFields{Stage: &req.Stage}
	if req.Stage == domain.StagePerdido {
		if req.LostReason == nil || strings.TrimSpace(*req.LostReason) == "" {
			return nil, apperr.Validation("lostReason is required when marking a lead as lost")
		}
		fields.LostReason = sanitize.TextPtr(req.LostReason)
	} else {
		fields.ClearLost = true
	}

	lead, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	if s.bus != nil && current.Stage != lead.Stage {
		s.bus.Publish(ctx, events.LeadStageChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			FromStage: current.Stage,
			ToStage:   lead.Stage,
		})
	}
	s.broadcaster.Broadcast(ctx, realtime.ResourceLeads, realtime.KindUpdate)

	return lead, nil
}

// Delete soft-deletes a lead. It disappears from the board and from
// webhook phone lookup, but its history remains queryable.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.broadcaster.Broadcast(ctx, realtime.ResourceLeads, realtime.KindUpdate)
	return nil
}

func (s *Service) resolveOwner(ctx context.Context, raw *string) (uuid.UUID, error) {
	if raw != nil && *raw != "" {
		ownerID, err := uuid.Parse(*raw)
		if err != nil {
			return uuid.Nil, apperr.Validation("invalid ownerId")
		}
		return ownerID, nil
	}
	return s.owners.ResolveDefaultOwner(ctx)
}
