package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cadenzahq/cadenza/pkg/conditions"
	"github.com/cadenzahq/cadenza/pkg/events"
	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/cadenzahq/cadenza/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
)

// Dispatch routes a business event to every active workflow registered for
// its trigger type. Workflows whose conditions do not match the payload are
// skipped without mutation. Matching workflows have Triggered incremented
// immediately; their actions then run honoring the workflow-level delay and
// each action's own delay.
//
// A persistence read failure aborts the dispatch before anything runs.
// Action failures never do: each one is logged and published, and the
// dispatch still completes.
func (e *Engine) Dispatch(ctx context.Context, triggerType models.TriggerType, payload map[string]any) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.dispatch",
		attribute.String(otelhelper.TriggerTypeKey, string(triggerType)))
	defer span.End()

	if !triggerType.IsValid() {
		return &ValidationError{Field: "trigger_type",
			Message: fmt.Sprintf("unknown trigger type '%s'", triggerType)}
	}

	workflows, err := e.persistence.WorkflowRepository().GetByTriggerType(ctx, triggerType)
	if err != nil {
		return fmt.Errorf("failed to load workflows for trigger '%s': %w", triggerType, err)
	}

	matched := 0

	for _, workflow := range workflows {
		if !workflow.Active {
			continue
		}

		if !conditions.Matches(workflow.Conditions, payload) {
			continue
		}

		matched++
		e.startRun(ctx, workflow, triggerType, payload)
	}

	e.logger.InfoContext(ctx, "Dispatch finished",
		"trigger_type", triggerType, "candidates", len(workflows), "matched", matched)

	return nil
}

// dispatchState counts down outstanding actions of one workflow run and
// fires the completion callback exactly once, when the last action has been
// attempted.
type dispatchState struct {
	mu        sync.Mutex
	remaining int
	failed    int
	onDone    func(failed int)
}

func (d *dispatchState) actionDone(failed bool) {
	d.mu.Lock()

	if failed {
		d.failed++
	}

	d.remaining--
	finished := d.remaining == 0
	failedCount := d.failed
	d.mu.Unlock()

	if finished {
		d.onDone(failedCount)
	}
}

func (e *Engine) startRun(ctx context.Context, workflow *models.Workflow, triggerType models.TriggerType, payload map[string]any) {
	dispatchID := e.eventBus.GenerateID()

	e.bumpTriggered(ctx, workflow.ID)

	triggeredEvent := events.WorkflowTriggered{
		BaseEvent:   e.baseEvent(events.WorkflowTriggeredEvent, workflow.ID),
		DispatchID:  dispatchID,
		TriggerType: triggerType,
		Payload:     payload,
	}
	e.publish(ctx, workflow.ID, triggeredEvent)

	e.logger.InfoContext(ctx, "Workflow triggered",
		"workflow_id", workflow.ID, "dispatch_id", dispatchID,
		"delay_minutes", workflow.DelayMinutes, "actions", len(workflow.Actions))

	// The run may outlive the request that dispatched it.
	runCtx := context.WithoutCancel(ctx)

	e.scheduler.Schedule(workflow.ID, e.delay(workflow.DelayMinutes), func() {
		e.runActions(runCtx, workflow, payload, dispatchID)
	})
}

func (e *Engine) runActions(ctx context.Context, workflow *models.Workflow, payload map[string]any, dispatchID string) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.run_workflow",
		attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
		attribute.String(otelhelper.DispatchIDKey, dispatchID))
	defer span.End()

	state := &dispatchState{
		remaining: len(workflow.Actions),
		onDone: func(failed int) {
			e.finishRun(ctx, workflow, dispatchID, len(workflow.Actions), failed)
		},
	}

	if len(workflow.Actions) == 0 {
		e.finishRun(ctx, workflow, dispatchID, 0, 0)

		return
	}

	for index, action := range workflow.Actions {
		if action.DelayMinutes <= 0 {
			state.actionDone(e.executeAction(ctx, workflow, index, action, payload, dispatchID))

			continue
		}

		e.scheduler.Schedule(workflow.ID, e.delay(action.DelayMinutes), func() {
			state.actionDone(e.executeAction(ctx, workflow, index, action, payload, dispatchID))
		})
	}
}

// executeAction runs one action and reports whether it failed. Failures are
// contained here: logged, published, never propagated.
func (e *Engine) executeAction(ctx context.Context, workflow *models.Workflow, index int, action models.Action, payload map[string]any, dispatchID string) bool {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.action",
		attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
		attribute.String(otelhelper.ActionTypeKey, string(action.Type)),
		attribute.Int(otelhelper.ActionIndexKey, index))
	defer span.End()

	logger := e.logger.With("workflow_id", workflow.ID,
		"dispatch_id", dispatchID, "action_type", action.Type, "action_index", index)

	err := e.runAction(ctx, action, payload, logger)
	if err == nil {
		logger.DebugContext(ctx, "Action executed")

		return false
	}

	otelhelper.SetError(span, err)
	logger.ErrorContext(ctx, "Action failed", "error", err)

	e.publish(ctx, workflow.ID, events.ActionFailed{
		BaseEvent:   e.baseEvent(events.ActionFailedEvent, workflow.ID),
		DispatchID:  dispatchID,
		ActionIndex: index,
		ActionType:  action.Type,
		Error:       err.Error(),
	})

	return true
}

func (e *Engine) runAction(ctx context.Context, action models.Action, payload map[string]any, logger *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()

	impl, err := e.registry.CreateAction(string(action.Type), action.Config())
	if err != nil {
		return err
	}

	_, err = impl.Execute(ctx, payload, logger)

	return err
}

// finishRun records the completed dispatch: Completed is incremented and the
// conversion rate recomputed under the workflow's stat lock. A stats write
// failure is logged and swallowed; the dispatch already happened.
func (e *Engine) finishRun(ctx context.Context, workflow *models.Workflow, dispatchID string, actionsRun, actionsFailed int) {
	stats := e.updateStats(ctx, workflow.ID, func(s *models.WorkflowStats) {
		s.Complete()
	})

	e.appendActivity(ctx, "dispatch", workflow.ID,
		fmt.Sprintf("Workflow '%s' completed a run", workflow.Name),
		map[string]any{
			"dispatch_id":    dispatchID,
			"actions_run":    actionsRun,
			"actions_failed": actionsFailed,
		})

	e.publish(ctx, workflow.ID, events.WorkflowCompleted{
		BaseEvent:     e.baseEvent(events.WorkflowCompletedEvent, workflow.ID),
		DispatchID:    dispatchID,
		Stats:         stats,
		ActionsRun:    actionsRun,
		ActionsFailed: actionsFailed,
	})

	e.logger.InfoContext(ctx, "Workflow run completed",
		"workflow_id", workflow.ID, "dispatch_id", dispatchID,
		"actions_run", actionsRun, "actions_failed", actionsFailed)
}

func (e *Engine) bumpTriggered(ctx context.Context, workflowID string) {
	e.updateStats(ctx, workflowID, func(s *models.WorkflowStats) {
		s.Triggered++
		s.Recompute()
	})
}

// updateStats performs a locked read-modify-write of one workflow's stats.
// Failures are logged, not returned: stats bookkeeping must never abort or
// fail a dispatch.
func (e *Engine) updateStats(ctx context.Context, workflowID string, mutate func(*models.WorkflowStats)) models.WorkflowStats {
	lock := e.lockFor(workflowID)
	lock.Lock()
	defer lock.Unlock()

	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to load workflow for stats update",
			"workflow_id", workflowID, "error", err)

		return models.WorkflowStats{}
	}

	mutate(&workflow.Stats)

	if err := e.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		e.logger.WarnContext(ctx, "Failed to persist workflow stats",
			"workflow_id", workflowID, "error", err)
	}

	return workflow.Stats
}

func (e *Engine) delay(units int) time.Duration {
	return time.Duration(units) * e.delayUnit
}
