// Package appointments provides the appointments domain module.
package appointments

import (
	"upboost_crm_backend/internal/appointments/handler"
	"upboost_crm_backend/internal/appointments/repository"
	"upboost_crm_backend/internal/appointments/service"
	apphttp "upboost_crm_backend/internal/http"
	"upboost_crm_backend/internal/realtime"
	"upboost_crm_backend/internal/scheduler"
	"upboost_crm_backend/platform/config"
	"upboost_crm_backend/platform/events"
	"upboost_crm_backend/platform/logger"
	"upboost_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the appointments domain module.
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new appointments module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, cfg config.SchedulingConfig, eventBus *events.InMemoryBus, broadcaster *realtime.Broadcaster, reminders scheduler.ReminderScheduler, sender service.EmailSender, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	svc.SetEventBus(eventBus)
	svc.SetBroadcaster(broadcaster)
	if reminders != nil {
		svc.SetReminderScheduler(reminders)
	}
	if sender != nil {
		svc.SetEmailSender(sender)
	}

	return &Module{
		handler: handler.New(svc, val),
		Service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "appointments"
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/appointments"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
