package leads

import (
	apphttp "upboost_crm_backend/internal/http"
	"upboost_crm_backend/internal/leads/handler"
	"upboost_crm_backend/internal/leads/repository"
	"upboost_crm_backend/internal/leads/service"
	"upboost_crm_backend/internal/realtime"
	"upboost_crm_backend/platform/events"
	"upboost_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the leads domain module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	reconciler *Reconciler
	repo       *repository.Repository
}

// NewModule creates a new leads module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, owners OwnerResolver, eventBus *events.InMemoryBus, broadcaster *realtime.Broadcaster, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, owners)
	svc.SetEventBus(eventBus)
	svc.SetBroadcaster(broadcaster)

	return &Module{
		handler:    handler.New(svc, val),
		service:    svc,
		reconciler: NewReconciler(repo, owners),
		repo:       repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Reconciler returns the webhook-facing reconciler.
func (m *Module) Reconciler() *Reconciler {
	return m.reconciler
}

// Repository returns the repository for cross-module wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
