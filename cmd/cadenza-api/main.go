package main

import (
	"context"
	"os"

	"github.com/cadenzahq/cadenza/pkg/cmd"
	"github.com/cadenzahq/cadenza/pkg/engine"
	"github.com/cadenzahq/cadenza/pkg/log"
	"github.com/cadenzahq/cadenza/pkg/otelhelper"
	"github.com/cadenzahq/cadenza/pkg/scheduler"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "cadenza-api",
		Usage:                 "Create and manage automation workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
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
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Cadenza API")

			persistence := cmd.NewPersistence(ctx, logger,
				command.String("database-url"), command.String("tenant"))

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			registry := cmd.NewRegistry(logger, persistence, cmd.GatewayConfig{
				EmailEndpoint: command.String("email-endpoint"),
				SMSEndpoint:   command.String("sms-endpoint"),
				CRMEndpoint:   command.String("crm-endpoint"),
				Token:         command.String("gateway-token"),
			})

			eventBus := cmd.NewEventBus(command.String("event-bus"), "cadenza-api", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			var tracer trace.Tracer
			if command.Bool("enable-tracing") {
				var err error

				tracer, err = otelhelper.NewTracer(ctx, "cadenza-api")
				if err != nil {
					return err
				}
			} else {
				tracer = otelhelper.NoopTracer()
			}

			eng := engine.NewEngine(
				persistence,
				registry,
				scheduler.NewScheduler(logger),
				eventBus,
				tracer,
				logger,
			)

			api := NewAPI(logger, eng, persistence)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
