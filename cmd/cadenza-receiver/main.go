// Package main provides the Cadenza event receiver: it consumes business
// events from Redis and emits scheduled time_delay events, feeding both into
// the engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cadenzahq/cadenza/pkg/cmd"
	"github.com/cadenzahq/cadenza/pkg/engine"
	"github.com/cadenzahq/cadenza/pkg/log"
	"github.com/cadenzahq/cadenza/pkg/otelhelper"
	"github.com/cadenzahq/cadenza/pkg/receivers/queue"
	"github.com/cadenzahq/cadenza/pkg/receivers/schedule"
	"github.com/cadenzahq/cadenza/pkg/scheduler"
	cli "github.com/urfave/cli/v3"
)

func main() {
	_ = log.WithModule("receiver")

	command := &cli.Command{
		Name:                  "cadenza-receiver",
		Usage:                 "Consume business events and dispatch them to workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "tenant",
				Usage:   "Tenant the store is scoped to",
				Value:   "default",
				Sources: cli.EnvVars("TENANT"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the event queue",
				Value:   "localhost:6379",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				Sources: cli.EnvVars("REDIS_PASSWORD"),
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number",
				Sources: cli.EnvVars("REDIS_DB"),
			},
			&cli.StringFlag{
				Name:    "queue",
				Usage:   "Redis list the event messages are pushed to",
				Value:   "cadenza:events",
				Sources: cli.EnvVars("EVENT_QUEUE"),
			},
			&cli.StringSliceFlag{
				Name:    "schedule",
				Usage:   "Recurring schedule as 'name|cron', repeatable",
				Sources: cli.EnvVars("SCHEDULES"),
			},
			&cli.StringFlag{
				Name:    "email-endpoint",
				Usage:   "Webhook endpoint for email delivery",
				Sources: cli.EnvVars("EMAIL_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:    "sms-endpoint",
				Usage:   "Webhook endpoint for SMS delivery",
				Sources: cli.EnvVars("SMS_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:    "crm-endpoint",
				Usage:   "Webhook endpoint for CRM writes",
				Sources: cli.EnvVars("CRM_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:    "gateway-token",
				Usage:   "Bearer token sent to gateway endpoints",
				Sources: cli.EnvVars("GATEWAY_TOKEN"),
			},
			&cli.BoolFlag{
				Name:    "enable-tracing",
				Usage:   "Export OTLP traces",
				Sources: cli.EnvVars("ENABLE_TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("receiver")
	log.Setup(command.String("log-level"))

	logger.InfoContext(ctx, "Initializing Cadenza receiver")

	persistence := cmd.NewPersistence(ctx, logger,
		command.String("database-url"), command.String("tenant"))

	registry := cmd.NewRegistry(logger, persistence, cmd.GatewayConfig{
		EmailEndpoint: command.String("email-endpoint"),
		SMSEndpoint:   command.String("sms-endpoint"),
		CRMEndpoint:   command.String("crm-endpoint"),
		Token:         command.String("gateway-token"),
	})

	eventBus := cmd.NewEventBus(command.String("event-bus"), "cadenza-receiver", logger)
	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	tracer := otelhelper.NoopTracer()

	if command.Bool("enable-tracing") {
		var err error

		tracer, err = otelhelper.NewTracer(ctx, "cadenza-receiver")
		if err != nil {
			return err
		}
	}

	eng := engine.NewEngine(
		persistence,
		registry,
		scheduler.NewScheduler(logger),
		eventBus,
		tracer,
		logger,
	)

	queueReceiver, err := queue.NewReceiver(queue.Config{
		Addr:     command.String("redis-addr"),
		Password: command.String("redis-password"),
		DB:       command.Int("redis-db"),
		Queue:    command.String("queue"),
	}, eng, logger)
	if err != nil {
		return err
	}

	entries, err := parseScheduleEntries(command.StringSlice("schedule"))
	if err != nil {
		return err
	}

	scheduleReceiver, err := schedule.NewReceiver(entries, eng, logger)
	if err != nil {
		return err
	}

	if err := queueReceiver.Start(ctx); err != nil {
		return err
	}

	if err := scheduleReceiver.Start(ctx); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Cadenza receiver started",
		"queue", command.String("queue"), "schedules", len(entries))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.InfoContext(ctx, "Shutting down")

	if err := scheduleReceiver.Stop(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to stop schedule receiver", "error", err)
	}

	if err := queueReceiver.Stop(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to stop queue receiver", "error", err)
	}

	return eng.Shutdown(ctx)
}

// parseScheduleEntries decodes repeated "name|cron" flags.
func parseScheduleEntries(raw []string) ([]schedule.Entry, error) {
	entries := make([]schedule.Entry, 0, len(raw))

	for _, item := range raw {
		parts := strings.SplitN(item, "|", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid schedule '%s', expected 'name|cron'", item)
		}

		entries = append(entries, schedule.Entry{
			Name: strings.TrimSpace(parts[0]),
			Cron: strings.TrimSpace(parts[1]),
		})
	}

	return entries, nil
}
