package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/astroev/stores-api/internal/config"
	"github.com/astroev/stores-api/internal/jobs"
	"github.com/astroev/stores-api/internal/logging"
	"github.com/astroev/stores-api/internal/mail"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	mailer := mail.NewClient(configuration.MAILGUN_DOMAIN, configuration.MAILGUN_API_KEY)

	worker := jobs.NewWorker(logger)
	worker.Register(jobs.TypeSendRegistrationEmail, func(ctx context.Context, job jobs.Job) error {
		return mailer.SendRegistrationEmail(ctx, job.RecipientEmail, job.Username)
	})

	consumer := jobs.NewConsumer(configuration.KAFKA_ADDRESS, "email-worker", worker, logger)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started", "topic", jobs.Topic)

	if err := consumer.Run(ctx); err != nil {
		logger.Error("worker stopped", "error", err)
		return
	}
	logger.Info("worker stopped")
}
