package scheduler

import (
	"context"
	"fmt"

	"upboost_crm_backend/internal/appointments/repository"
	"upboost_crm_backend/internal/email"
	"upboost_crm_backend/internal/events"
	"upboost_crm_backend/platform/config"
	"upboost_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WorkerConfig combines the config interfaces needed by the reminder worker.
type WorkerConfig interface {
	config.SchedulerConfig
	config.SchedulingConfig
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	bus    events.Bus
	sender email.Sender
	cfg    WorkerConfig
	log    *logger.Logger
}

func NewWorker(cfg WorkerConfig, pool *pgxpool.Pool, bus events.Bus, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		bus:    bus,
		sender: sender,
		cfg:    cfg,
		log:    log,
	}

	mux.HandleFunc(TaskAppointmentReminder, w.handleAppointmentReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleAppointmentReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAppointmentReminderPayload(task)
	if err != nil {
		return err
	}

	apptID, err := uuid.Parse(payload.AppointmentID)
	if err != nil {
		return err
	}

	info, err := w.repo.ReminderInfo(ctx, apptID)
	if err != nil {
		return err
	}
	if info == nil {
		return nil
	}

	// Cancelled or rescheduled appointments keep their enqueued task; this
	// check is what actually suppresses the stale reminder.
	if reminderStale(payload, info) {
		return nil
	}

	if w.bus != nil {
		w.bus.Publish(ctx, events.AppointmentReminderDue{
			BaseEvent:     events.NewBaseEvent(),
			AppointmentID: info.AppointmentID,
			LeadID:        info.LeadID,
			StartsAt:      info.StartsAt,
		})
	}

	if w.sender == nil || info.OwnerEmail == "" {
		return nil
	}

	when := info.StartsAt.In(w.cfg.GetBusinessLocation()).Format("02/01/2006 15:04")
	if err := w.sender.SendAppointmentReminderEmail(ctx, info.OwnerEmail, info.LeadName, when); err != nil {
		w.log.Warn("appointment reminder email failed", "appointmentId", info.AppointmentID, "error", err)
	}

	return nil
}

// reminderStale reports whether an enqueued reminder no longer matches the
// appointment: it was cancelled or completed, or a reschedule moved it to a
// different window than the one the task was enqueued for.
func reminderStale(payload AppointmentReminderPayload, info *repository.ReminderInfo) bool {
	if info.Status != repository.StatusScheduled {
		return true
	}
	return !payload.StartsAt.IsZero() && !payload.StartsAt.Equal(info.StartsAt)
}
