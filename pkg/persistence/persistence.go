// Package persistence provides the data storage abstraction the automation
// engine depends on. The engine never talks to a concrete store directly;
// it owns only a reference to these interfaces.
package persistence

import (
	"context"

	"github.com/cadenzahq/cadenza/pkg/models"
)

// WorkflowRepository stores automation workflows.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	GetByTriggerType(ctx context.Context, triggerType models.TriggerType) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// TemplateRepository stores message templates. IncrementUsage is atomic:
// concurrent dispatches sending the same template must not lose counts.
type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*models.MessageTemplate, error)
	Save(ctx context.Context, template *models.MessageTemplate) error
	IncrementUsage(ctx context.Context, id string) error
}

// ActivityRepository is the append-only activity log sink.
type ActivityRepository interface {
	Append(ctx context.Context, entry *models.ActivityEntry) error
	List(ctx context.Context, entityType, entityID string) ([]*models.ActivityEntry, error)
}

// Persistence aggregates the repositories of one tenant-scoped store.
// Implementations are constructed already scoped to a tenant; callers never
// pass tenant identifiers per call.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	TemplateRepository() TemplateRepository
	ActivityRepository() ActivityRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
