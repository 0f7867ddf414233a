package webhook

import (
	"net/http"
	"strconv"
	"time"

	"upboost_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxBodySize caps inbound webhook bodies. Providers send small JSON
// envelopes; anything bigger is abuse.
const maxBodySize = 1 << 20

// Handler handles webhook HTTP requests.
type Handler struct {
	service *Service
	repo    *Repository
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service, repo *Repository) *Handler {
	return &Handler{service: service, repo: repo}
}

// HandleBotconversa processes a botconversa flow webhook.
// POST /api/webhooks/botconversa
func (h *Handler) HandleBotconversa(c *gin.Context) {
	h.ingest(c, ProviderBotconversa, func(raw []byte) Outcome {
		return h.service.HandleBotconversa(c.Request.Context(), EventMessage, raw)
	})
}

// HandleNovoContato processes the dedicated new-contact botconversa flow.
// POST /api/webhooks/botconversa/novo-contato
func (h *Handler) HandleNovoContato(c *gin.Context) {
	h.ingest(c, ProviderBotconversa, func(raw []byte) Outcome {
		return h.service.HandleBotconversa(c.Request.Context(), EventNewContact, raw)
	})
}

// HandleEvolution processes an evolution API event.
// POST /api/webhooks/evolution
func (h *Handler) HandleEvolution(c *gin.Context) {
	h.ingest(c, ProviderEvolution, func(raw []byte) Outcome {
		return h.service.HandleEvolution(c.Request.Context(), raw)
	})
}

// HandleEvolutionPing answers the provider's endpoint verification.
// GET|OPTIONS /api/webhooks/evolution
func (h *Handler) HandleEvolutionPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "online",
		"provider": ProviderEvolution,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

// ingest runs one webhook request through the shared pipeline: read the
// body, compute the outcome, write exactly one audit row, respond.
func (h *Handler) ingest(c *gin.Context, provider string, process func(raw []byte) Outcome) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	raw, err := c.GetRawData()
	if err != nil {
		outcome := Outcome{
			Provider:   provider,
			Status:     StatusError,
			HTTPStatus: http.StatusBadRequest,
			Response:   failureResponse{Error: "unreadable request body"},
			Err:        err,
		}
		h.service.Record(c.Request.Context(), outcome, nil)
		c.JSON(outcome.HTTPStatus, outcome.Response)
		return
	}

	outcome := process(raw)
	h.service.Record(c.Request.Context(), outcome, raw)
	c.JSON(outcome.HTTPStatus, outcome.Response)
}

// LogResponse is the audit row representation for the admin listing.
type LogResponse struct {
	ID        uuid.UUID  `json:"id"`
	Provider  string     `json:"provider"`
	Event     string     `json:"event"`
	Payload   string     `json:"payload"`
	Status    string     `json:"status"`
	Action    *string    `json:"action,omitempty"`
	LeadID    *uuid.UUID `json:"leadId,omitempty"`
	Error     *string    `json:"error,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// HandleListLogs lists the webhook audit trail.
// GET /api/v1/admin/webhook-logs
func (h *Handler) HandleListLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	entries, err := h.repo.ListLogs(c.Request.Context(), ListLogsParams{
		Provider: c.Query("provider"),
		Status:   c.Query("status"),
		Limit:    limit,
		Offset:   offset,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]LogResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, LogResponse{
			ID:        e.ID,
			Provider:  e.Provider,
			Event:     e.Event,
			Payload:   e.Payload,
			Status:    e.Status,
			Action:    e.Action,
			LeadID:    e.LeadID,
			Error:     e.Error,
			CreatedAt: e.CreatedAt,
		})
	}
	httpkit.OK(c, gin.H{"logs": result})
}
