// Package sendemail provides the send_email action: template resolution,
// placeholder rendering and delivery through the email collaborator.
package sendemail

import (
	"github.com/cadenzahq/cadenza/pkg/persistence"
	"github.com/cadenzahq/cadenza/pkg/protocol"
)

// ActionFactory creates send_email actions bound to a template repository
// and email gateway.
type ActionFactory struct {
	templates persistence.TemplateRepository
	gateway   protocol.EmailGateway
}

func NewActionFactory(templates persistence.TemplateRepository, gateway protocol.EmailGateway) *ActionFactory {
	return &ActionFactory{
		templates: templates,
		gateway:   gateway,
	}
}

// ID returns the unique identifier for the action factory.
func (*ActionFactory) ID() string {
	return "send_email"
}

// Schema returns the JSON schema for the action configuration.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"template": map[string]any{
				"type":        "string",
				"description": "Identifier of the message template to send.",
			},
			"target": map[string]any{
				"type":        "string",
				"description": "Recipient address. Supports {{key}} placeholders; defaults to the payload's 'email' field.",
			},
		},
		"required": []string{"template"},
	}
}

// Create creates a new send_email action with the provided configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.templates, f.gateway)
}
