package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/audit"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	// Load .env for local development; ignore errors in production.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting fintrack-worker")

	// The worker only needs the AMQP and audit settings, so the full API
	// validation (JWT secret, backend) does not apply here.
	cfg := config.Load()
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}
	if cfg.AMQPExchange == "" || cfg.AMQPQueue == "" {
		logger.Error("AMQP_EXCHANGE and AMQP_QUEUE must not be empty")
		os.Exit(1)
	}

	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer events.Close()

	auditLog := audit.NewJSONFile(cfg.AuditLogPath)
	auditWorker := worker.NewAuditWorker(auditLog)
	logger.Info("Audit log ready", "path", cfg.AuditLogPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := events.ConsumeTransactionEvents(ctx, auditWorker.HandleEvent); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("Event consumption failed", applog.FieldError, err)
			os.Exit(1)
		}
	}

	logger.Info("Worker stopped gracefully")
}
