// Package models defines the core domain models for CRM automation rules.
package models

import "time"

// TriggerType represents the category of business event that causes a
// workflow to be matched.
type TriggerType string

const (
	TriggerNewLead        TriggerType = "new_lead"
	TriggerFormSubmission TriggerType = "form_submission"
	TriggerEmailOpened    TriggerType = "email_opened"
	TriggerLinkClicked    TriggerType = "link_clicked"
	TriggerPageVisited    TriggerType = "page_visited"
	TriggerTimeDelay      TriggerType = "time_delay"
	TriggerTagAdded       TriggerType = "tag_added"
)

// IsValid reports whether the trigger type is one of the recognized event kinds.
func (t TriggerType) IsValid() bool {
	switch t {
	case TriggerNewLead, TriggerFormSubmission, TriggerEmailOpened,
		TriggerLinkClicked, TriggerPageVisited, TriggerTimeDelay, TriggerTagAdded:
		return true
	default:
		return false
	}
}

// WorkflowStats tracks dispatch outcomes for a single workflow.
// Triggered increments once per dispatch that passes condition matching;
// Completed increments once all actions of that dispatch have been attempted.
type WorkflowStats struct {
	Triggered      int `json:"triggered"`
	Completed      int `json:"completed"`
	ConversionRate int `json:"conversion_rate"`
}

// Complete records one finished dispatch and recomputes the conversion rate.
func (s *WorkflowStats) Complete() {
	s.Completed++
	s.Recompute()
}

// Recompute derives ConversionRate from the current counters,
// rounded to the nearest whole percent.
func (s *WorkflowStats) Recompute() {
	if s.Triggered == 0 {
		s.ConversionRate = 0

		return
	}

	s.ConversionRate = int(float64(s.Completed)/float64(s.Triggered)*100 + 0.5)
}

// Workflow pairs a trigger type and conditions with an ordered list of
// actions. Dispatch may mutate only the Stats field.
type Workflow struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"          validate:"required"`
	Description  string        `json:"description"`
	TriggerType  TriggerType   `json:"trigger_type"  validate:"required"`
	Conditions   []Condition   `json:"conditions"`
	Actions      []Action      `json:"actions"`
	DelayMinutes int           `json:"delay_minutes" validate:"gte=0"`
	Active       bool          `json:"active"`
	Stats        WorkflowStats `json:"stats"`
	Owner        string        `json:"owner,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// WorkflowPatch describes a partial update. Nil fields are left untouched.
// Stats are deliberately absent: dispatch bookkeeping is the only writer.
type WorkflowPatch struct {
	Name         *string      `json:"name,omitempty"`
	Description  *string      `json:"description,omitempty"`
	TriggerType  *TriggerType `json:"trigger_type,omitempty"`
	Conditions   *[]Condition `json:"conditions,omitempty"`
	Actions      *[]Action    `json:"actions,omitempty"`
	DelayMinutes *int         `json:"delay_minutes,omitempty"`
	Active       *bool        `json:"active,omitempty"`
}

// Apply copies the non-nil patch fields onto the workflow.
func (p WorkflowPatch) Apply(w *Workflow) {
	if p.Name != nil {
		w.Name = *p.Name
	}

	if p.Description != nil {
		w.Description = *p.Description
	}

	if p.TriggerType != nil {
		w.TriggerType = *p.TriggerType
	}

	if p.Conditions != nil {
		w.Conditions = *p.Conditions
	}

	if p.Actions != nil {
		w.Actions = *p.Actions
	}

	if p.DelayMinutes != nil {
		w.DelayMinutes = *p.DelayMinutes
	}

	if p.Active != nil {
		w.Active = *p.Active
	}
}
