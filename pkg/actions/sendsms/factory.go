// Package sendsms provides the send_sms action.
package sendsms

import "github.com/cadenzahq/cadenza/pkg/protocol"

type ActionFactory struct {
	gateway protocol.SMSGateway
}

func NewActionFactory(gateway protocol.SMSGateway) *ActionFactory {
	return &ActionFactory{gateway: gateway}
}

func (*ActionFactory) ID() string {
	return "send_sms"
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"target": map[string]any{
				"type":        "string",
				"description": "Recipient phone number. Supports {{key}} placeholders; defaults to the payload's 'phone' field.",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Message body. Supports {{key}} placeholders.",
			},
		},
		"required": []string{"message"},
	}
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.gateway)
}
