// Package addtocrm provides the add_to_crm action: it writes the event
// payload into a CRM collection through the CRM collaborator.
package addtocrm

import "github.com/cadenzahq/cadenza/pkg/protocol"

type ActionFactory struct {
	gateway protocol.CRMGateway
}

func NewActionFactory(gateway protocol.CRMGateway) *ActionFactory {
	return &ActionFactory{gateway: gateway}
}

func (*ActionFactory) ID() string {
	return "add_to_crm"
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"collection": map[string]any{
				"type":        "string",
				"description": "Destination CRM collection.",
				"default":     "contacts",
			},
			"fields": map[string]any{
				"type":        "object",
				"description": "Mapping of CRM field name to payload key. When absent, the whole payload is written.",
			},
		},
	}
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.gateway), nil
}
