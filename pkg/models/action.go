package models

// ActionType identifies a registered action implementation. The set is
// extensible through the registry; these are the built-in types.
type ActionType string

const (
	ActionSendEmail ActionType = "send_email"
	ActionSendSMS   ActionType = "send_sms"
	ActionAddToCRM  ActionType = "add_to_crm"
)

// Action is a single side-effecting step of a workflow. DelayMinutes defers
// this action relative to the start of the workflow run; zero means the
// action executes inline, in list order, before dispatch returns.
type Action struct {
	Type         ActionType     `json:"type"                   validate:"required"`
	Template     string         `json:"template,omitempty"`
	Target       string         `json:"target,omitempty"`
	Params       map[string]any `json:"params,omitempty"`
	DelayMinutes int            `json:"delay_minutes"          validate:"gte=0"`
}

// Config flattens the action into the configuration map handed to action
// factories.
func (a Action) Config() map[string]any {
	config := make(map[string]any, len(a.Params)+2)
	for k, v := range a.Params {
		config[k] = v
	}

	if a.Template != "" {
		config["template"] = a.Template
	}

	if a.Target != "" {
		config["target"] = a.Target
	}

	return config
}
