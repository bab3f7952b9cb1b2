package models

import "time"

// MessageTemplate is a reusable message body with {{key}} placeholders
// resolved against the event payload at send time.
type MessageTemplate struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"    validate:"required"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	UsageCount int       `json:"usage_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}
