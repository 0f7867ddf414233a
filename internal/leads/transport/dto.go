// Package transport defines the HTTP request and response shapes for leads.
package transport

import (
	"time"

	"upboost_crm_backend/internal/leads/repository"
	"upboost_crm_backend/platform/phone"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=200"`
	Phone      string  `json:"phone" validate:"required,min=8,max=20"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Source     string  `json:"source,omitempty" validate:"omitempty,max=100"`
	Plan       string  `json:"plan,omitempty" validate:"omitempty,max=100"`
	ValueCents int64   `json:"valueCents,omitempty" validate:"omitempty,gte=0"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	OwnerID    *string `json:"ownerId,omitempty" validate:"omitempty,uuid"`
}

type UpdateLeadRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Plan       *string `json:"plan,omitempty" validate:"omitempty,max=100"`
	ValueCents *int64  `json:"valueCents,omitempty" validate:"omitempty,gte=0"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	InPipeline *bool   `json:"inPipeline,omitempty"`
}

type UpdateStageRequest struct {
	Stage      string  `json:"stage" validate:"required"`
	LostReason *string `json:"lostReason,omitempty" validate:"omitempty,max=500"`
}

type ListLeadsQuery struct {
	Stage           string `form:"stage"`
	Search          string `form:"search"`
	IncludeArchived bool   `form:"includeArchived"`
	Limit           int    `form:"limit"`
	Offset          int    `form:"offset"`
}

// Response DTOs

type LeadResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	PhoneFormatted string    `json:"phoneFormatted"`
	Email          *string   `json:"email,omitempty"`
	Source         string    `json:"source"`
	Plan           string    `json:"plan"`
	ValueCents     int64     `json:"valueCents"`
	Stage          string    `json:"stage"`
	InPipeline     bool      `json:"inPipeline"`
	OwnerID        uuid.UUID `json:"ownerId"`
	LostReason     *string   `json:"lostReason,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ToLeadResponse maps a lead model to its API representation.
func ToLeadResponse(lead *repository.Lead) LeadResponse {
	return LeadResponse{
		ID:             lead.ID,
		Name:           lead.Name,
		Phone:          lead.Phone,
		PhoneFormatted: phone.FormatDisplay(lead.Phone),
		Email:          lead.Email,
		Source:         lead.Source,
		Plan:           lead.Plan,
		ValueCents:     lead.ValueCents,
		Stage:          lead.Stage,
		InPipeline:     lead.InPipeline,
		OwnerID:        lead.OwnerID,
		LostReason:     lead.LostReason,
		Notes:          lead.Notes,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}

// ToLeadResponses maps a slice of lead models.
func ToLeadResponses(leads []repository.Lead) []LeadResponse {
	responses := make([]LeadResponse, 0, len(leads))
	for i := range leads {
		responses = append(responses, ToLeadResponse(&leads[i]))
	}
	return responses
}
