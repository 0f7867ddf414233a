// Package handler exposes appointment availability and booking over HTTP.
package handler

import (
	"net/http"
	"time"

	"upboost_crm_backend/internal/appointments/service"
	"upboost_crm_backend/internal/appointments/transport"
	"upboost_crm_backend/platform/apperr"
	"upboost_crm_backend/platform/httpkit"
	"upboost_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles appointment HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new appointments handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the appointment routes on the given group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/slots", h.slots)
	group.GET("/week", h.week)
	group.POST("", h.create)
	group.GET("/:id", h.get)
	group.GET("/:id/history", h.history)
	group.PATCH("/:id/reschedule", h.reschedule)
	group.POST("/:id/cancel", h.cancel)
	group.POST("/:id/complete", h.complete)
	group.GET("/lead/:leadId", h.listByLead)
}

func (h *Handler) slots(c *gin.Context) {
	date, err := h.parseDateQuery(c, "date")
	if httpkit.HandleError(c, err) {
		return
	}

	slots, err := h.svc.AvailableSlots(c.Request.Context(), date)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"slots": toSlotResponses(slots, h.svc.BusinessLocation())})
}

func (h *Handler) week(c *gin.Context) {
	from, err := h.parseDateQuery(c, "from")
	if httpkit.HandleError(c, err) {
		return
	}

	appts, err := h.svc.Week(c.Request.Context(), from)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"appointments": transport.ToAppointmentResponses(appts)})
}

func (h *Handler) create(c *gin.Context) {
	var req transport.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	appt, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToAppointmentResponse(appt))
}

func (h *Handler) get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	appt, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAppointmentResponse(appt))
}

func (h *Handler) history(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.svc.History(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"history": transport.ToHistoryResponses(entries)})
}

func (h *Handler) reschedule(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req transport.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	appt, err := h.svc.Reschedule(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAppointmentResponse(appt))
}

func (h *Handler) cancel(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req transport.CancelAppointmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
			return
		}
	}

	appt, err := h.svc.Cancel(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAppointmentResponse(appt))
}

func (h *Handler) complete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	appt, err := h.svc.Complete(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAppointmentResponse(appt))
}

func (h *Handler) listByLead(c *gin.Context) {
	leadID, ok := h.pathID(c, "leadId")
	if !ok {
		return
	}

	appts, err := h.svc.ListByLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"appointments": transport.ToAppointmentResponses(appts)})
}

func (h *Handler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// parseDateQuery reads a date-only query parameter as a calendar day in
// the business timezone. Parsing it as UTC would land the midnight
// instant on the previous local day.
func (h *Handler) parseDateQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Now(), nil
	}
	date, err := time.ParseInLocation("2006-01-02", raw, h.svc.BusinessLocation())
	if err != nil {
		return time.Time{}, apperr.Validation(name + " must be YYYY-MM-DD")
	}
	return date, nil
}

func toSlotResponses(slots []service.Slot, loc *time.Location) []transport.SlotResponse {
	responses := make([]transport.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		responses = append(responses, transport.SlotResponse{
			Time:        slot.StartsAt.In(loc).Format("15:04"),
			ScheduledAt: slot.StartsAt,
			Available:   slot.Available,
		})
	}
	return responses
}
