// Package webhook ingests provider callbacks into the lead pipeline and
// keeps an audit trail of every request.
package webhook

import (
	apphttp "upboost_crm_backend/internal/http"
	"upboost_crm_backend/internal/realtime"
	"upboost_crm_backend/platform/config"
	"upboost_crm_backend/platform/events"
	"upboost_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the webhook ingestion module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates a new webhook module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, reconciler Reconciler, owners config.OwnerConfig, eventBus *events.InMemoryBus, broadcaster *realtime.Broadcaster, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(reconciler, repo, owners, log)
	svc.SetEventBus(eventBus)
	svc.SetBroadcaster(broadcaster)

	return &Module{
		handler: NewHandler(svc, repo),
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "webhook"
}

// Service returns the service for cross-module wiring.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes registers the public ingestion and admin audit routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Webhooks.POST("/botconversa", m.handler.HandleBotconversa)
	ctx.Webhooks.POST("/botconversa/novo-contato", m.handler.HandleNovoContato)
	ctx.Webhooks.POST("/evolution", m.handler.HandleEvolution)
	ctx.Webhooks.GET("/evolution", m.handler.HandleEvolutionPing)
	ctx.Webhooks.OPTIONS("/evolution", m.handler.HandleEvolutionPing)

	ctx.Admin.GET("/webhook-logs", m.handler.HandleListLogs)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
