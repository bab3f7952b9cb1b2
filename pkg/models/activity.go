package models

import "time"

// ActivityEntry is one append-only activity log record. Writes are
// fire-and-forget: a failed append never aborts the operation that
// produced it.
type ActivityEntry struct {
	ID          string         `json:"id"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}
