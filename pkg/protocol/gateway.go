package protocol

import "context"

// DeliveryResult reports the outcome of one collaborator call.
type DeliveryResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type SMSMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type CRMRecord struct {
	Collection string         `json:"collection"`
	Fields     map[string]any `json:"fields"`
}

// The notification collaborators. Each is a fallible, independent,
// side-effecting call; the engine never assumes one outcome affects another.

type EmailGateway interface {
	Send(ctx context.Context, msg EmailMessage) (DeliveryResult, error)
}

type SMSGateway interface {
	Send(ctx context.Context, msg SMSMessage) (DeliveryResult, error)
}

type CRMGateway interface {
	Write(ctx context.Context, record CRMRecord) (DeliveryResult, error)
}
