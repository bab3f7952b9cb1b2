// Package engine implements the automation rule engine: workflow lifecycle
// management and event dispatch against stored workflows.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cadenzahq/cadenza/pkg/eventbus"
	"github.com/cadenzahq/cadenza/pkg/events"
	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/cadenzahq/cadenza/pkg/persistence"
	"github.com/cadenzahq/cadenza/pkg/registry"
	"github.com/cadenzahq/cadenza/pkg/scheduler"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// ValidationError reports a rejected workflow field. The web layer maps it
// to a 400 response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid workflow: %s %s", e.Field, e.Message)
}

// Engine owns workflow lifecycle and dispatch. Stats mutations are
// serialized per workflow through a keyed mutex so concurrent dispatches
// never lose increments.
type Engine struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	scheduler   *scheduler.Scheduler
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	logger      *slog.Logger

	// delayUnit is what one DelayMinutes unit translates to. Tests shrink
	// it to drive delayed actions to completion in unit time.
	delayUnit time.Duration

	locksMu   sync.Mutex
	statLocks map[string]*sync.Mutex
}

func NewEngine(
	store persistence.Persistence,
	reg *registry.Registry,
	sched *scheduler.Scheduler,
	bus eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		persistence: store,
		registry:    reg,
		scheduler:   sched,
		eventBus:    bus,
		tracer:      tracer,
		logger:      logger.With("module", "engine"),
		delayUnit:   time.Minute,
		statLocks:   make(map[string]*sync.Mutex),
	}
}

// CreateWorkflow validates and stores a new workflow. New workflows start
// inactive with zeroed stats regardless of what the caller supplied.
func (e *Engine) CreateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if err := validateWorkflow(workflow); err != nil {
		return nil, err
	}

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	workflow.Active = false
	workflow.Stats = models.WorkflowStats{}
	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if err := e.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	e.appendActivity(ctx, "create", workflow.ID,
		fmt.Sprintf("Workflow '%s' created", workflow.Name), nil)

	e.publish(ctx, workflow.ID, events.WorkflowCreated{
		BaseEvent:   e.baseEvent(events.WorkflowCreatedEvent, workflow.ID),
		Name:        workflow.Name,
		TriggerType: workflow.TriggerType,
	})

	e.logger.InfoContext(ctx, "Workflow created",
		"workflow_id", workflow.ID, "trigger_type", workflow.TriggerType)

	return workflow, nil
}

// UpdateWorkflow applies a partial update. Stats cannot be patched.
func (e *Engine) UpdateWorkflow(ctx context.Context, id string, patch models.WorkflowPatch) (*models.Workflow, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(workflow)
	workflow.UpdatedAt = time.Now().UTC()

	if err := e.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	e.appendActivity(ctx, "update", workflow.ID,
		fmt.Sprintf("Workflow '%s' updated", workflow.Name), nil)

	return workflow, nil
}

// ToggleWorkflow flips the active flag. Deactivating does not cancel work
// already scheduled; only deletion does.
func (e *Engine) ToggleWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	workflow.Active = !workflow.Active
	workflow.UpdatedAt = time.Now().UTC()

	if err := e.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	action := "deactivate"
	if workflow.Active {
		action = "activate"
	}

	e.appendActivity(ctx, action, workflow.ID,
		fmt.Sprintf("Workflow '%s' %sd", workflow.Name, action), nil)

	return workflow, nil
}

// DeleteWorkflow removes the workflow and cancels its pending scheduled
// actions.
func (e *Engine) DeleteWorkflow(ctx context.Context, id string) error {
	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return err
	}

	cancelled := e.scheduler.CancelGroup(id)
	if cancelled > 0 {
		e.logger.InfoContext(ctx, "Cancelled pending scheduled actions",
			"workflow_id", id, "count", cancelled)
	}

	if err := e.persistence.WorkflowRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	e.appendActivity(ctx, "delete", id,
		fmt.Sprintf("Workflow '%s' deleted", workflow.Name), nil)

	return nil
}

func (e *Engine) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	return e.persistence.WorkflowRepository().GetByID(ctx, id)
}

func (e *Engine) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	return e.persistence.WorkflowRepository().GetAll(ctx)
}

// Activity lists the activity log entries recorded for a workflow.
func (e *Engine) Activity(ctx context.Context, workflowID string) ([]*models.ActivityEntry, error) {
	return e.persistence.ActivityRepository().List(ctx, "workflow", workflowID)
}

// Shutdown stops the scheduler and waits for in-flight scheduled actions.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.scheduler.Stop()
	e.scheduler.Wait()

	return e.persistence.Close(ctx)
}

func validateWorkflow(workflow *models.Workflow) error {
	if workflow.Name == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}

	if !workflow.TriggerType.IsValid() {
		return &ValidationError{Field: "trigger_type",
			Message: fmt.Sprintf("unknown trigger type '%s'", workflow.TriggerType)}
	}

	if workflow.DelayMinutes < 0 {
		return &ValidationError{Field: "delay_minutes", Message: "must not be negative"}
	}

	return validateActions(workflow.Actions)
}

func validatePatch(patch models.WorkflowPatch) error {
	if patch.Name != nil && *patch.Name == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}

	if patch.TriggerType != nil && !patch.TriggerType.IsValid() {
		return &ValidationError{Field: "trigger_type",
			Message: fmt.Sprintf("unknown trigger type '%s'", *patch.TriggerType)}
	}

	if patch.DelayMinutes != nil && *patch.DelayMinutes < 0 {
		return &ValidationError{Field: "delay_minutes", Message: "must not be negative"}
	}

	if patch.Actions != nil {
		return validateActions(*patch.Actions)
	}

	return nil
}

func validateActions(actions []models.Action) error {
	for i, action := range actions {
		if action.Type == "" {
			return &ValidationError{Field: fmt.Sprintf("actions[%d].type", i),
				Message: "must not be empty"}
		}

		if action.DelayMinutes < 0 {
			return &ValidationError{Field: fmt.Sprintf("actions[%d].delay_minutes", i),
				Message: "must not be negative"}
		}
	}

	return nil
}

// lockFor returns the stat mutex for a workflow, creating it on first use.
func (e *Engine) lockFor(workflowID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	lock, ok := e.statLocks[workflowID]
	if !ok {
		lock = &sync.Mutex{}
		e.statLocks[workflowID] = lock
	}

	return lock
}

func (e *Engine) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         e.eventBus.GenerateID(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if err := e.eventBus.Publish(ctx, key, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.GetType(), "error", err)
	}
}

func (e *Engine) appendActivity(ctx context.Context, action, workflowID, description string, metadata map[string]any) {
	entry := &models.ActivityEntry{
		ID:          uuid.New().String(),
		Action:      action,
		EntityType:  "workflow",
		EntityID:    workflowID,
		Description: description,
		Metadata:    metadata,
		OccurredAt:  time.Now().UTC(),
	}

	if err := e.persistence.ActivityRepository().Append(ctx, entry); err != nil {
		e.logger.WarnContext(ctx, "Failed to append activity entry",
			"workflow_id", workflowID, "action", action, "error", err)
	}
}
