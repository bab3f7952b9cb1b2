package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cadenzahq/cadenza/pkg/events"
	"github.com/cadenzahq/cadenza/pkg/mocks"
	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/cadenzahq/cadenza/pkg/otelhelper"
	"github.com/cadenzahq/cadenza/pkg/registry"
	"github.com/cadenzahq/cadenza/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDispatch_RunsActionsInOrder(t *testing.T) {
	h := newHarness(t)
	created := h.mustCreate(t, &models.Workflow{
		Name:        "w",
		TriggerType: models.TriggerFormSubmission,
		Actions: []models.Action{
			{Type: "record", Params: map[string]any{"label": "first"}},
			{Type: "record", Params: map[string]any{"label": "second"}},
			{Type: "record", Params: map[string]any{"label": "third"}},
		},
	})
	h.mustActivate(t, created.ID)

	err := h.engine.Dispatch(context.Background(), models.TriggerFormSubmission, map[string]any{"email": "a@b.c"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, h.recorder.recorded())

	stored, err := h.engine.GetWorkflow(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStats{Triggered: 1, Completed: 1, ConversionRate: 100}, stored.Stats)

	require.Len(t, h.bus.PublishedOfType(events.WorkflowTriggeredEvent), 1)

	completed := h.bus.PublishedOfType(events.WorkflowCompletedEvent)
	require.Len(t, completed, 1)
	event := completed[0].(events.WorkflowCompleted)
	assert.Equal(t, 3, event.ActionsRun)
	assert.Equal(t, 0, event.ActionsFailed)
}

func TestDispatch_SkipsInactiveWorkflows(t *testing.T) {
	h := newHarness(t)
	created := h.mustCreate(t, &models.Workflow{
		Name:        "w",
		TriggerType: models.TriggerNewLead,
		Actions:     []models.Action{{Type: "record", Params: map[string]any{"label": "x"}}},
	})

	require.NoError(t, h.engine.Dispatch(context.Background(), models.TriggerNewLead, map[string]any{}))

	assert.Empty(t, h.recorder.recorded())
	assert.Empty(t, h.bus.PublishedOfType(events.WorkflowTriggeredEvent))

	stored, err := h.engine.GetWorkflow(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStats{}, stored.Stats)
}

func TestDispatch_SkipsOnConditionMismatch(t *testing.T) {
	h := newHarness(t)
	created := h.mustCreate(t, &models.Workflow{
		Name:        "w",
		TriggerType: models.TriggerPageVisited,
		Conditions: []models.Condition{
			{Field: "page", Operator: models.OperatorEquals, Value: "pricing"},
		},
		Actions: []models.Action{{Type: "record", Params: map[string]any{"label": "x"}}},
	})
	h.mustActivate(t, created.ID)

	require.NoError(t, h.engine.Dispatch(context.Background(), models.TriggerPageVisited,
		map[string]any{"page": "blog"}))

	assert.Empty(t, h.recorder.recorded())

	stored, err := h.engine.GetWorkflow(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStats{}, stored.Stats, "a skip must not touch stats")
}

func TestDispatch_RunsOnConditionMatch(t *testing.T) {
	h := newHarness(t)
	created := h.mustCreate(t, &models.Workflow{
		Name:        "w",
		TriggerType: models.TriggerFormSubmission,
		Conditions: []models.Condition{
			{Field: "budget", Operator: models.OperatorGreaterThan, Value: 1000},
			{Field: "country", Operator: models.OperatorEquals, Value: "DE"},
		},
		Actions: []models.Action{{Type: "record", Params: map[string]any{"label": "qualified"}}},
	})
	h.mustActivate(t, created.ID)

	require.NoError(t, h.engine.Dispatch(context.Background(), models.TriggerFormSubmission,
		map[string]any{"budget": "5000", "country": "DE"}))

	assert.Equal(t, []string{"qualified"}, h.recorder.recorded())

	stored, err := h.engine.GetWorkflow(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stats.Triggered)
}

func TestDispatch_ActionFailureDoesNotAbortSiblings(t *testing.T) {
	h := newHarness(t)
	created := h.mustCreate(t, &models.Workflow{
		Name:        "w",
		TriggerType: models.TriggerNewLead,
		Actions: []models.Action{
			{Type: "record", Params: map[string]any{"label": "before"}},
			{Type: "explode"},
			{Type: "record", Params: map[string]any{"label": "after"}},
		},
	})
	h.mustActivate(t, created.ID)

	require.NoError(t, h.engine.Dispatch(context.Background(), models.TriggerNewLead, map[string]any{}))

	assert.Equal(t, []string{"before", "after"}, h.recorder.recorded())

	failed := h.bus.PublishedOfType(events.ActionFailedEvent)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].(events.ActionFailed).ActionIndex)

	stored, err := h.engine.GetWorkflow(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stats.Completed, "a run with failures still counts as completed")

	completed := h.bus.PublishedOfType(events.WorkflowCompletedEvent)
	require.Len(t, completed, 1)
	assert.Equal(t, 1, completed[0].(events.WorkflowCompleted).ActionsFailed)
}

func TestDispatch_UnknownActionTypeIsFailedAttempt(t *testing.T) {
	h := newHarness(t)
	created := h.mustCreate(t, &models.Workflow{
		Name:        "w",
		TriggerType: models.TriggerNewLead,
		Actions:     []models.Action{{Type: "carrier_pigeon"}},
	})
	h.mustActivate(t, created.ID)

	require.NoError(t, h.engine.Dispatch(context.Background(), models.TriggerNewLead, map[string]any{}))

	require.Len(t, h.bus.PublishedOfType(events.ActionFailedEvent), 1)

	stored, err := h.engine.GetWorkflow(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stats.Completed)
}

func TestDispatch_NoActionsStillCompletes(t *testing.T) {
	h := newHarness(t)
	created := h.mustCreate(t, &models.Workflow{Name: "w", TriggerType: models.TriggerTagAdded})
	h.mustActivate(t, created.ID)

	require.NoError(t, h.engine.Dispatch(context.Background(), models.TriggerTagAdded, map[string]any{}))

	stored, err := h.engine.GetWorkflow(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStats{Triggered: 1, Completed: 1, ConversionRate: 100}, stored.Stats)
}

func TestDispatch_WorkflowDelayDefersActions(t *testing.T) {
	h := newHarness(t)
	created := h.mustCreate(t, &models.Workflow{
		Name:         "w",
		TriggerType:  models.TriggerNewLead,
		DelayMinutes: 10,
		Actions:      []models.Action{{Type: "record", Params: map[string]any{"label": "x"}}},
	})
	h.mustActivate(t, created.ID)

	require.NoError(t, h.engine.Dispatch(context.Background(), models.TriggerNewLead, map[string]any{}))

	assert.Empty(t, h.recorder.recorded())
	assert.Equal(t, 1, h.scheduler.PendingCount())

	stored, err := h.engine.GetWorkflow(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStats{Triggered: 1, Completed: 0, ConversionRate: 0}, stored.Stats,
		"Triggered increments immediately, Completed only after the delayed run")
}

func TestDispatch_DelayedActionDoesNotBlockInlineOnes(t *testing.T) {
	h := newHarness(t)
	created := h.mustCreate(t, &models.Workflow{
		Name:        "w",
		TriggerType: models.TriggerNewLead,
		Actions: []models.Action{
			{Type: "record", Params: map[string]any{"label": "delayed"}, DelayMinutes: 60},
			{Type: "record", Params: map[string]any{"label": "inline"}},
		},
	})
	h.mustActivate(t, created.ID)

	require.NoError(t, h.engine.Dispatch(context.Background(), models.TriggerNewLead, map[string]any{}))

	assert.Equal(t, []string{"inline"}, h.recorder.recorded())
	assert.Equal(t, 1, h.scheduler.PendingCount())

	stored, err := h.engine.GetWorkflow(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stats.Completed, "run completes only after the delayed action")
	assert.Empty(t, h.bus.PublishedOfType(events.WorkflowCompletedEvent))
}

func TestDispatch_DelayedActionEventuallyCompletes(t *testing.T) {
	h := newHarness(t)
	h.engine.delayUnit = 5 * time.Millisecond

	created := h.mustCreate(t, &models.Workflow{
		Name:         "w",
		TriggerType:  models.TriggerNewLead,
		DelayMinutes: 1,
		Actions: []models.Action{
			{Type: "record", Params: map[string]any{"label": "later"}, DelayMinutes: 1},
		},
	})
	h.mustActivate(t, created.ID)

	require.NoError(t, h.engine.Dispatch(context.Background(), models.TriggerNewLead, map[string]any{}))

	h.scheduler.Wait()

	assert.Equal(t, []string{"later"}, h.recorder.recorded())

	stored, err := h.engine.GetWorkflow(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStats{Triggered: 1, Completed: 1, ConversionRate: 100}, stored.Stats,
		"Completed and the rate update once the delayed action has run")

	completed := h.bus.PublishedOfType(events.WorkflowCompletedEvent)
	require.Len(t, completed, 1)
	event := completed[0].(events.WorkflowCompleted)
	assert.Equal(t, 1, event.ActionsRun)
	assert.Equal(t, 0, event.ActionsFailed)
}

func TestDispatch_MultipleMatchingWorkflows(t *testing.T) {
	h := newHarness(t)

	for _, label := range []string{"one", "two"} {
		created := h.mustCreate(t, &models.Workflow{
			Name:        label,
			TriggerType: models.TriggerEmailOpened,
			Actions:     []models.Action{{Type: "record", Params: map[string]any{"label": label}}},
		})
		h.mustActivate(t, created.ID)
	}

	require.NoError(t, h.engine.Dispatch(context.Background(), models.TriggerEmailOpened, map[string]any{}))

	assert.ElementsMatch(t, []string{"one", "two"}, h.recorder.recorded())
	assert.Len(t, h.bus.PublishedOfType(events.WorkflowCompletedEvent), 2)
}

func TestDispatch_InvalidTriggerType(t *testing.T) {
	h := newHarness(t)

	err := h.engine.Dispatch(context.Background(), "meteor_strike", map[string]any{})

	var validationErr *ValidationError

	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "trigger_type", validationErr.Field)
}

func TestDispatch_StoreReadFailureAborts(t *testing.T) {
	store := mocks.NewMockPersistence()
	store.Workflows.On("GetByTriggerType", mock.Anything, models.TriggerNewLead).
		Return(nil, errors.New("connection refused"))

	bus := mocks.NewRecordingEventBus()
	logger := testLogger()
	eng := NewEngine(store, registry.NewRegistry(logger), scheduler.NewScheduler(logger),
		bus, otelhelper.NoopTracer(), logger)

	err := eng.Dispatch(context.Background(), models.TriggerNewLead, map[string]any{})

	assert.ErrorContains(t, err, "connection refused")
	assert.Empty(t, bus.Published(), "nothing runs when the read fails")
}

func TestDispatch_StatsWriteFailureDoesNotFailDispatch(t *testing.T) {
	workflow := &models.Workflow{
		ID:          "wf-1",
		Name:        "w",
		TriggerType: models.TriggerNewLead,
		Active:      true,
	}

	store := mocks.NewMockPersistence()
	store.Workflows.On("GetByTriggerType", mock.Anything, models.TriggerNewLead).
		Return([]*models.Workflow{workflow}, nil)
	store.Workflows.On("GetByID", mock.Anything, "wf-1").Return(workflow, nil)
	store.Workflows.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	store.Activities.On("Append", mock.Anything, mock.Anything).Return(nil)

	bus := mocks.NewRecordingEventBus()
	logger := testLogger()
	eng := NewEngine(store, registry.NewRegistry(logger), scheduler.NewScheduler(logger),
		bus, otelhelper.NoopTracer(), logger)

	err := eng.Dispatch(context.Background(), models.TriggerNewLead, map[string]any{})

	require.NoError(t, err, "a stats write failure must not fail the dispatch")
	assert.Len(t, bus.PublishedOfType(events.WorkflowCompletedEvent), 1)
}
