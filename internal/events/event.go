// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"upboost_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead enters the pipeline,
// whether from a webhook provider or the back-office API.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	OwnerID  uuid.UUID `json:"ownerId"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Source   string    `json:"source"`
	Stage    string    `json:"stage"`
	Provider string    `json:"provider,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadReconciled is published after a webhook payload has been merged into
// an existing lead (including idempotent reactivations).
type LeadReconciled struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	Provider    string    `json:"provider"`
	Action      string    `json:"action"`
	Stage       string    `json:"stage"`
	StageMoved  bool      `json:"stageMoved"`
	Reactivated bool      `json:"reactivated"`
}

func (e LeadReconciled) EventName() string { return "leads.lead.reconciled" }

// LeadStageChanged is published whenever a lead moves between pipeline stages.
type LeadStageChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	FromStage string    `json:"fromStage"`
	ToStage   string    `json:"toStage"`
	Reason    string    `json:"reason,omitempty"`
}

func (e LeadStageChanged) EventName() string { return "leads.lead.stage_changed" }

// =============================================================================
// Appointments Domain Events
// =============================================================================

// AppointmentCreated is published when a new appointment is booked.
type AppointmentCreated struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	LeadID        uuid.UUID `json:"leadId"`
	OwnerID       uuid.UUID `json:"ownerId"`
	StartsAt      time.Time `json:"startsAt"`
	EndsAt        time.Time `json:"endsAt"`
}

func (e AppointmentCreated) EventName() string { return "appointments.appointment.created" }

// AppointmentStatusChanged is published when an appointment is confirmed,
// completed, rescheduled, or cancelled.
type AppointmentStatusChanged struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	LeadID        uuid.UUID `json:"leadId"`
	FromStatus    string    `json:"fromStatus"`
	ToStatus      string    `json:"toStatus"`
	Reason        string    `json:"reason,omitempty"`
}

func (e AppointmentStatusChanged) EventName() string { return "appointments.appointment.status_changed" }

// AppointmentReminderDue is published by the scheduler worker when a
// reminder task fires.
type AppointmentReminderDue struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	LeadID        uuid.UUID `json:"leadId"`
	StartsAt      time.Time `json:"startsAt"`
}

func (e AppointmentReminderDue) EventName() string { return "appointments.appointment.reminder_due" }
