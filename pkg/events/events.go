// Package events defines event types and structures for engine lifecycle
// notifications.
package events

import (
	"time"

	"github.com/cadenzahq/cadenza/pkg/models"
)

type EventType string

// Topic carries all engine lifecycle events.
const Topic = "cadenza.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowCreatedEvent   EventType = "workflow.created"
	WorkflowTriggeredEvent EventType = "workflow.triggered"
	WorkflowCompletedEvent EventType = "workflow.completed"
	ActionFailedEvent      EventType = "workflow.action.failed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type WorkflowCreated struct {
	BaseEvent

	Name        string             `json:"name"`
	TriggerType models.TriggerType `json:"trigger_type"`
}

func (w WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

type WorkflowTriggered struct {
	BaseEvent

	DispatchID  string             `json:"dispatch_id"`
	TriggerType models.TriggerType `json:"trigger_type"`
	Payload     map[string]any     `json:"payload,omitempty"`
}

func (w WorkflowTriggered) GetType() EventType {
	return WorkflowTriggeredEvent
}

// WorkflowCompleted is published once every action of a dispatch has been
// attempted, successfully or not.
type WorkflowCompleted struct {
	BaseEvent

	DispatchID    string               `json:"dispatch_id"`
	Stats         models.WorkflowStats `json:"stats"`
	ActionsRun    int                  `json:"actions_run"`
	ActionsFailed int                  `json:"actions_failed"`
}

func (w WorkflowCompleted) GetType() EventType {
	return WorkflowCompletedEvent
}

type ActionFailed struct {
	BaseEvent

	DispatchID  string            `json:"dispatch_id"`
	ActionIndex int               `json:"action_index"`
	ActionType  models.ActionType `json:"action_type"`
	Error       string            `json:"error"`
}

func (a ActionFailed) GetType() EventType {
	return ActionFailedEvent
}
