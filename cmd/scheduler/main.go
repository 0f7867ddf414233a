package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"upboost_crm_backend/internal/email"
	"upboost_crm_backend/internal/events"
	"upboost_crm_backend/internal/scheduler"
	"upboost_crm_backend/platform/config"
	"upboost_crm_backend/platform/db"
	"upboost_crm_backend/platform/logger"
)

// Background worker that delivers appointment reminders scheduled by the
// API. Runs as a separate process next to the API server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	if cfg.GetRedisURL() == "" {
		log.Error("REDIS_URL is required for the scheduler worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	worker, err := scheduler.NewWorker(cfg, pool, eventBus, sender, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	log.Info("scheduler worker starting", "env", cfg.Env)
	worker.Run(ctx)
	log.Info("scheduler worker stopped")
}
