package sendemail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cadenzahq/cadenza/pkg/persistence"
	"github.com/cadenzahq/cadenza/pkg/protocol"
	"github.com/cadenzahq/cadenza/pkg/template"
)

var ErrTemplateRequired = errors.New("send_email action requires a 'template' in configuration")

type Action struct {
	TemplateID string
	Target     string

	templates persistence.TemplateRepository
	gateway   protocol.EmailGateway
}

func NewAction(config map[string]any, templates persistence.TemplateRepository, gateway protocol.EmailGateway) (*Action, error) {
	templateID, _ := config["template"].(string)
	if templateID == "" {
		return nil, ErrTemplateRequired
	}

	target, _ := config["target"].(string)

	return &Action{
		TemplateID: templateID,
		Target:     target,
		templates:  templates,
		gateway:    gateway,
	}, nil
}

func (a *Action) Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "send_email", "template", a.TemplateID)

	messageTemplate, err := a.templates.GetByID(ctx, a.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve template %s: %w", a.TemplateID, err)
	}

	to := a.resolveTarget(payload)
	if to == "" {
		return nil, fmt.Errorf("no recipient for template %s: payload has no 'email' field and no target configured", a.TemplateID)
	}

	msg := protocol.EmailMessage{
		To:      to,
		Subject: template.Render(messageTemplate.Subject, payload),
		Body:    template.Render(messageTemplate.Body, payload),
	}

	result, err := a.gateway.Send(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("email delivery failed: %w", err)
	}

	if err := a.templates.IncrementUsage(ctx, a.TemplateID); err != nil {
		// Best effort: the message is already out.
		logger.WarnContext(ctx, "Failed to update template usage counter", "error", err)
	}

	logger.InfoContext(ctx, "Email sent", "to", to, "delivery_id", result.ID)

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

	if email, ok := payload["email"].(string); ok {
		return email
	}

	return ""
}
