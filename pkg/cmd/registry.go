// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"log/slog"

	"github.com/cadenzahq/cadenza/pkg/actions/addtocrm"
	"github.com/cadenzahq/cadenza/pkg/actions/sendemail"
	"github.com/cadenzahq/cadenza/pkg/actions/sendsms"
	"github.com/cadenzahq/cadenza/pkg/gateways/webhook"
	"github.com/cadenzahq/cadenza/pkg/persistence"
	"github.com/cadenzahq/cadenza/pkg/registry"
)

// GatewayConfig carries the webhook endpoints of the notification
// collaborators.
type GatewayConfig struct {
	EmailEndpoint string
	SMSEndpoint   string
	CRMEndpoint   string
	Token         string
}

// NewRegistry builds the action registry with the native actions wired to
// their collaborators.
func NewRegistry(logger *slog.Logger, store persistence.Persistence, gateways GatewayConfig) *registry.Registry {
	reg := registry.NewRegistry(logger)

	var opts []webhook.Option
	if gateways.Token != "" {
		opts = append(opts, webhook.WithToken(gateways.Token))
	}

	reg.RegisterAction(sendemail.NewActionFactory(
		store.TemplateRepository(),
		webhook.NewEmailGateway(gateways.EmailEndpoint, opts...),
	))
	reg.RegisterAction(sendsms.NewActionFactory(
		webhook.NewSMSGateway(gateways.SMSEndpoint, opts...),
	))
	reg.RegisterAction(addtocrm.NewActionFactory(
		webhook.NewCRMGateway(gateways.CRMEndpoint, opts...),
	))

	return reg
}
