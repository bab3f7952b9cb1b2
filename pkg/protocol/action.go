// Package protocol defines the interfaces and contracts between the engine,
// its actions and the external collaborators.
package protocol

import (
	"context"
	"log/slog"
)

// Action performs one side-effecting step against an event payload. An
// action failure is caught by the engine; it never aborts sibling actions.
type Action interface {
	Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory creates action instances and describes their configuration.
type ActionFactory interface {
	// ID returns the unique identifier for this action type
	ID() string

	// Schema returns the JSON schema for the action configuration
	Schema() map[string]any

	// Create creates a new action instance with the given configuration
	Create(config map[string]any) (Action, error)
}
