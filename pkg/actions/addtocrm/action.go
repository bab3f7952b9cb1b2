package addtocrm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cadenzahq/cadenza/pkg/protocol"
)

const defaultCollection = "contacts"

type Action struct {
	Collection string
	Fields     map[string]string // CRM field name -> payload key

	gateway protocol.CRMGateway
}

func NewAction(config map[string]any, gateway protocol.CRMGateway) *Action {
	collection, _ := config["collection"].(string)
	if collection == "" {
		collection = defaultCollection
	}

	fields := make(map[string]string)

	if fieldsConfig, ok := config["fields"].(map[string]any); ok {
		for name, key := range fieldsConfig {
			if keyStr, ok := key.(string); ok {
				fields[name] = keyStr
			}
		}
	}

	return &Action{
		Collection: collection,
		Fields:     fields,
		gateway:    gateway,
	}
}

func (a *Action) Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "add_to_crm", "collection", a.Collection)

	record := protocol.CRMRecord{
		Collection: a.Collection,
		Fields:     a.mapFields(payload),
	}

	result, err := a.gateway.Write(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("crm write failed: %w", err)
	}

	logger.InfoContext(ctx, "CRM record written", "record_id", result.ID)

	return map[string]any{
		"success":   result.Success,
		"record_id": result.ID,
	}, nil
}

func (a *Action) mapFields(payload map[string]any) map[string]any {
	if len(a.Fields) == 0 {
		fields := make(map[string]any, len(payload))
		for k, v := range payload {
			fields[k] = v
		}

		return fields
	}

	fields := make(map[string]any, len(a.Fields))

	for name, key := range a.Fields {
		if value, ok := payload[key]; ok {
			fields[name] = value
		}
	}

	return fields
}
