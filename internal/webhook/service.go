package webhook

import (
	"context"
	"encoding/json"
	"net/http"

	"upboost_crm_backend/internal/events"
	"upboost_crm_backend/internal/leads"
	"upboost_crm_backend/internal/realtime"
	"upboost_crm_backend/platform/apperr"
	"upboost_crm_backend/platform/config"
	"upboost_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Providers accepted on the public ingestion endpoints.
const (
	ProviderBotconversa = "botconversa"
	ProviderEvolution   = "evolution"
)

// Events recorded in the audit trail.
const (
	EventMessage    = "message"
	EventNewContact = "novo-contato"
)

const evolutionMessageEvent = "messages.upsert"

// Reconciler is the lead reconciliation entry point used by ingestion.
type Reconciler interface {
	Reconcile(ctx context.Context, policy leads.Policy, in leads.Input) (*leads.Result, error)
}

// AuditStore records one row per inbound webhook request.
type AuditStore interface {
	Insert(ctx context.Context, entry *LogEntry) error
}

// NewLeadNotifier sends the new-lead notification email.
type NewLeadNotifier interface {
	SendNewLeadEmail(ctx context.Context, toEmail, leadName, leadPhone, source string) error
}

// Outcome is the single record of what one webhook request did. The
// handler writes exactly one audit row from it and derives the HTTP
// response from it, so processing and auditing can never diverge.
type Outcome struct {
	Provider   string
	Event      string
	Status     string
	Action     string
	LeadID     *uuid.UUID
	HTTPStatus int
	Response   any
	Err        error
}

type successResponse struct {
	Success       bool   `json:"success"`
	Action        string `json:"action,omitempty"`
	LeadID        string `json:"leadId,omitempty"`
	MappedSource  string `json:"mappedSource,omitempty"`
	PreviousStage string `json:"previousStage,omitempty"`
	NewStage      string `json:"newStage,omitempty"`
	Message       string `json:"message,omitempty"`
	Received      any    `json:"received,omitempty"`
}

type ignoredResponse struct {
	Ignored bool   `json:"ignored"`
	Reason  string `json:"reason"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Service processes inbound webhook payloads.
type Service struct {
	reconciler  Reconciler
	audit       AuditStore
	bus         events.Bus
	broadcaster *realtime.Broadcaster
	sender      NewLeadNotifier
	owners      config.OwnerConfig
	log         *logger.Logger
}

// NewService creates the webhook ingestion service.
func NewService(reconciler Reconciler, audit AuditStore, owners config.OwnerConfig, log *logger.Logger) *Service {
	return &Service{reconciler: reconciler, audit: audit, owners: owners, log: log}
}

// SetEventBus wires the domain event bus.
func (s *Service) SetEventBus(bus events.Bus) { s.bus = bus }

// SetBroadcaster wires the cache-invalidation broadcaster.
func (s *Service) SetBroadcaster(b *realtime.Broadcaster) { s.broadcaster = b }

// SetNewLeadNotifier wires the new-lead email notification. Optional.
func (s *Service) SetNewLeadNotifier(sender NewLeadNotifier) { s.sender = sender }

// HandleBotconversa processes a botconversa flow webhook.
func (s *Service) HandleBotconversa(ctx context.Context, event string, raw []byte) Outcome {
	outcome := Outcome{Provider: ProviderBotconversa, Event: event}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return s.fail(outcome, apperr.BadRequest("invalid JSON payload"))
	}

	// The platform probes the endpoint when the flow is saved.
	isTest, _ := data["test"].(bool)
	if action, _ := data["action"].(string); isTest || action == "test" {
		outcome.Status = StatusIgnored
		outcome.HTTPStatus = http.StatusOK
		outcome.Response = successResponse{Success: true, Message: "test connection acknowledged", Received: data}
		return outcome
	}

	contact := ExtractBotconversaContact(data)

	// The new-contact flow only ever creates: a repeated signup must not
	// touch a lead that is already being worked.
	policy := leads.Policy{UpdateName: true, CreateOnly: event == EventNewContact}
	return s.reconcile(ctx, outcome, policy, contact)
}

// HandleEvolution processes an evolution API event webhook. Non-message
// events and own outbound messages are acknowledged without touching the
// pipeline, but still audited.
func (s *Service) HandleEvolution(ctx context.Context, raw []byte) Outcome {
	outcome := Outcome{Provider: ProviderEvolution}

	var payload EvolutionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return s.fail(outcome, apperr.BadRequest("invalid JSON payload"))
	}
	outcome.Event = payload.Event

	if payload.Event != evolutionMessageEvent {
		return s.ignore(outcome, "Unsupported event")
	}
	if payload.Data.Key.FromMe {
		return s.ignore(outcome, "Message from me")
	}

	contact := ExtractEvolutionContact(payload)
	if contact.Phone == "" {
		return s.ignore(outcome, "Missing remoteJid")
	}
	return s.reconcile(ctx, outcome, leads.Policy{UpdateName: false}, contact)
}

// Record writes the single audit row for an outcome. Audit failures are
// logged and swallowed: the provider already got its response semantics.
func (s *Service) Record(ctx context.Context, outcome Outcome, raw []byte) {
	entry := &LogEntry{
		ID:       uuid.New(),
		Provider: outcome.Provider,
		Event:    outcome.Event,
		Payload:  string(raw),
		Status:   outcome.Status,
		LeadID:   outcome.LeadID,
	}
	if outcome.Action != "" {
		entry.Action = &outcome.Action
	}
	if outcome.Err != nil {
		msg := outcome.Err.Error()
		entry.Error = &msg
	}

	if err := s.audit.Insert(ctx, entry); err != nil {
		s.log.Warn("webhook audit insert failed", "provider", outcome.Provider, "error", err)
		return
	}

	leadID := ""
	if outcome.LeadID != nil {
		leadID = outcome.LeadID.String()
	}
	s.log.WebhookEvent(outcome.Provider, outcome.Event, outcome.Status, leadID)
}

func (s *Service) reconcile(ctx context.Context, outcome Outcome, policy leads.Policy, contact Contact) Outcome {
	result, err := s.reconciler.Reconcile(ctx, policy, leads.Input{
		Name:       contact.Name,
		Phone:      contact.Phone,
		Email:      contact.Email,
		SourceHint: contact.SourceHint,
	})
	if err != nil {
		return s.fail(outcome, err)
	}

	outcome.Status = StatusProcessed
	outcome.Action = result.Action
	outcome.LeadID = &result.Lead.ID
	outcome.HTTPStatus = http.StatusOK
	if result.Created {
		outcome.HTTPStatus = http.StatusCreated
	}
	outcome.Response = successResponse{
		Success:       true,
		Action:        result.Action,
		LeadID:        result.Lead.ID.String(),
		MappedSource:  result.MappedSource,
		PreviousStage: result.PreviousStage,
		NewStage:      result.Lead.Stage,
	}

	if result.Action != leads.ActionAlreadyExists {
		s.publish(ctx, outcome.Provider, result)
	}
	return outcome
}

func (s *Service) publish(ctx context.Context, provider string, result *leads.Result) {
	if s.bus != nil {
		if result.Created {
			s.bus.Publish(ctx, events.LeadCreated{
				BaseEvent: events.NewBaseEvent(),
				LeadID:    result.Lead.ID,
				OwnerID:   result.Lead.OwnerID,
				Name:      result.Lead.Name,
				Phone:     result.Lead.Phone,
				Source:    result.Lead.Source,
				Stage:     result.Lead.Stage,
				Provider:  provider,
			})
		} else {
			s.bus.Publish(ctx, events.LeadReconciled{
				BaseEvent:   events.NewBaseEvent(),
				LeadID:      result.Lead.ID,
				Provider:    provider,
				Action:      result.Action,
				Stage:       result.Lead.Stage,
				StageMoved:  result.StageMoved,
				Reactivated: result.Reactivated,
			})
		}
	}

	kind := realtime.KindUpdate
	if result.Created {
		kind = realtime.KindInsert
	}
	s.broadcaster.Broadcast(ctx, realtime.ResourceLeads, kind)

	if result.Created && s.sender != nil {
		if emails := s.owners.GetOperatorEmails(); len(emails) > 0 {
			if err := s.sender.SendNewLeadEmail(ctx, emails[0], result.Lead.Name, result.Lead.Phone, result.Lead.Source); err != nil {
				s.log.Warn("new lead email failed", "leadId", result.Lead.ID, "error", err)
			}
		}
	}
}

func (s *Service) ignore(outcome Outcome, reason string) Outcome {
	outcome.Status = StatusIgnored
	outcome.HTTPStatus = http.StatusOK
	outcome.Response = ignoredResponse{Ignored: true, Reason: reason}
	return outcome
}

func (s *Service) fail(outcome Outcome, err error) Outcome {
	outcome.Status = StatusError
	outcome.Err = err

	if domainErr, ok := err.(*apperr.Error); ok {
		outcome.HTTPStatus = domainErr.HTTPStatus()
		outcome.Response = failureResponse{Error: domainErr.Message}
		return outcome
	}

	outcome.HTTPStatus = http.StatusInternalServerError
	outcome.Response = failureResponse{Error: "internal error"}
	return outcome
}
