// Package transport defines the HTTP request and response shapes for appointments.
package transport

import (
	"time"

	"upboost_crm_backend/internal/appointments/repository"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	LeadID   string  `json:"leadId" validate:"required,uuid"`
	OwnerID  string  `json:"ownerId" validate:"required,uuid"`
	Title    string  `json:"title,omitempty" validate:"omitempty,max=200"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	StartsAt string  `json:"startsAt" validate:"required"`
	EndsAt   string  `json:"endsAt,omitempty"`
}

type RescheduleAppointmentRequest struct {
	StartsAt string `json:"startsAt" validate:"required"`
	EndsAt   string `json:"endsAt,omitempty"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// Response DTOs

// SlotResponse is one bookable interval as shown to the booking UI.
type SlotResponse struct {
	Time        string    `json:"time"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Available   bool      `json:"available"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Title     string    `json:"title"`
	Notes     *string   `json:"notes,omitempty"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type HistoryEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	Detail    *string   `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToAppointmentResponse maps an appointment model to its API representation.
func ToAppointmentResponse(appt *repository.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        appt.ID,
		LeadID:    appt.LeadID,
		OwnerID:   appt.OwnerID,
		Title:     appt.Title,
		Notes:     appt.Notes,
		StartsAt:  appt.StartsAt,
		EndsAt:    appt.EndsAt,
		Status:    appt.Status,
		CreatedAt: appt.CreatedAt,
		UpdatedAt: appt.UpdatedAt,
	}
}

// ToAppointmentResponses maps a slice of appointment models.
func ToAppointmentResponses(appts []repository.Appointment) []AppointmentResponse {
	responses := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		responses = append(responses, ToAppointmentResponse(&appts[i]))
	}
	return responses
}

// ToHistoryResponses maps history entries.
func ToHistoryResponses(entries []repository.HistoryEntry) []HistoryEntryResponse {
	responses := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, HistoryEntryResponse{
			ID:        e.ID,
			Action:    e.Action,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt,
		})
	}
	return responses
}
