// Package web provides HTTP request and response types for the automation API.
package web

import "github.com/cadenzahq/cadenza/pkg/models"

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name         string             `json:"name"          validate:"required,min=3"`
	Description  string             `json:"description"`
	TriggerType  models.TriggerType `json:"trigger_type"  validate:"required"`
	Conditions   []models.Condition `json:"conditions"`
	Actions      []models.Action    `json:"actions"`
	DelayMinutes int                `json:"delay_minutes" validate:"gte=0"`
	Owner        string             `json:"owner"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow. All fields are optional to support partial updates; stats are
// not patchable.
type UpdateWorkflowRequest struct {
	Name         *string             `json:"name,omitempty"          validate:"omitempty,min=3"`
	Description  *string             `json:"description,omitempty"`
	TriggerType  *models.TriggerType `json:"trigger_type,omitempty"`
	Conditions   *[]models.Condition `json:"conditions,omitempty"`
	Actions      *[]models.Action    `json:"actions,omitempty"`
	DelayMinutes *int                `json:"delay_minutes,omitempty" validate:"omitempty,gte=0"`
	Active       *bool               `json:"active,omitempty"`
}

// Patch converts the request into the engine's patch form.
func (r UpdateWorkflowRequest) Patch() models.WorkflowPatch {
	return models.WorkflowPatch{
		Name:         r.Name,
		Description:  r.Description,
		TriggerType:  r.TriggerType,
		Conditions:   r.Conditions,
		Actions:      r.Actions,
		DelayMinutes: r.DelayMinutes,
		Active:       r.Active,
	}
}

// DispatchRequest represents an inbound business event.
type DispatchRequest struct {
	TriggerType models.TriggerType `json:"trigger_type" validate:"required"`
	Payload     map[string]any     `json:"payload"`
}
