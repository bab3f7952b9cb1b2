package sendsms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cadenzahq/cadenza/pkg/protocol"
	"github.com/cadenzahq/cadenza/pkg/template"
)

var ErrMessageRequired = errors.New("send_sms action requires a 'message' in configuration")

type Action struct {
	Target  string
	Message string

	gateway protocol.SMSGateway
}

func NewAction(config map[string]any, gateway protocol.SMSGateway) (*Action, error) {
	message, _ := config["message"].(string)
	if message == "" {
		return nil, ErrMessageRequired
	}

	target, _ := config["target"].(string)

	return &Action{
		Target:  target,
		Message: message,
		gateway: gateway,
	}, nil
}

func (a *Action) Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "send_sms")

	to := a.resolveTarget(payload)
	if to == "" {
		return nil, errors.New("no recipient: payload has no 'phone' field and no target configured")
	}

	msg := protocol.SMSMessage{
		To:   to,
		Body: template.Render(a.Message, payload),
	}

	result, err := a.gateway.Send(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("sms delivery failed: %w", err)
	}

	logger.InfoContext(ctx, "SMS sent", "to", to, "delivery_id", result.ID)

	return map[string]any{
		"success":     result.Success,
		"delivery_id": result.ID,
		"to":          to,
	}, nil
}

func (a *Action) resolveTarget(payload map[string]any) string {
	if a.Target != "" {
		return template.Render(a.Target, payload)
	}

	if phone, ok := payload["phone"].(string); ok {
		return phone
	}

	return ""
}
