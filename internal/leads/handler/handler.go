// Package handler exposes the leads pipeline over HTTP.
package handler

import (
	"net/http"

	"upboost_crm_backend/internal/leads/service"
	"upboost_crm_backend/internal/leads/transport"
	"upboost_crm_backend/platform/apperr"
	"upboost_crm_backend/platform/httpkit"
	"upboost_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles lead pipeline HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the lead routes on the given group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.list)
	group.POST("", h.create)
	group.GET("/:id", h.get)
	group.PATCH("/:id", h.update)
	group.PATCH("/:id/stage", h.updateStage)
	group.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	var query transport.ListLeadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid query parameters"))
		return
	}

	leads, err := h.svc.List(c.Request.Context(), query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"leads": transport.ToLeadResponses(leads)})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(lead))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) updateStage(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	lead, err := h.svc.UpdateStage(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid lead id"))
		return uuid.Nil, false
	}
	return id, true
}
