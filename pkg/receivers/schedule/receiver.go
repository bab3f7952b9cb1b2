// Package schedule emits time based business events on cron schedules.
// Each entry dispatches a time_delay event whose payload identifies the
// schedule that fired.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/robfig/cron/v3"
)

// Dispatcher routes one business event. Implemented by the engine.
type Dispatcher interface {
	Dispatch(ctx context.Context, triggerType models.TriggerType, payload map[string]any) error
}

// Entry is one recurring schedule. Payload values are merged into every
// event the entry emits.
type Entry struct {
	Name    string
	Cron    string
	Payload map[string]any
}

// Receiver runs cron schedules and dispatches a time_delay event each time
// one fires.
type Receiver struct {
	entries    []Entry
	dispatcher Dispatcher
	logger     *slog.Logger
	cron       *cron.Cron
}

func NewReceiver(entries []Entry, dispatcher Dispatcher, logger *slog.Logger) (*Receiver, error) {
	receiver := &Receiver{
		entries:    entries,
		dispatcher: dispatcher,
		logger:     logger.With("module", "schedule_receiver"),
	}

	if err := receiver.Validate(); err != nil {
		return nil, err
	}

	return receiver, nil
}

func (r *Receiver) Validate() error {
	for _, entry := range r.entries {
		if entry.Name == "" {
			return errors.New("schedule entry name is required")
		}

		if _, err := cron.ParseStandard(entry.Cron); err != nil {
			return fmt.Errorf("invalid cron expression for schedule '%s': %w", entry.Name, err)
		}
	}

	return nil
}

func (r *Receiver) Start(ctx context.Context) error {
	r.cron = cron.New()

	for _, entry := range r.entries {
		if _, err := r.cron.AddFunc(entry.Cron, func() {
			r.fire(ctx, entry)
		}); err != nil {
			return fmt.Errorf("failed to register schedule '%s': %w", entry.Name, err)
		}

		r.logger.InfoContext(ctx, "Schedule registered", "name", entry.Name, "cron", entry.Cron)
	}

	r.cron.Start()

	return nil
}

func (r *Receiver) fire(ctx context.Context, entry Entry) {
	payload := map[string]any{
		"schedule":  entry.Name,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range entry.Payload {
		payload[k] = v
	}

	r.logger.InfoContext(ctx, "Schedule fired", "name", entry.Name)

	if err := r.dispatcher.Dispatch(ctx, models.TriggerTimeDelay, payload); err != nil {
		r.logger.ErrorContext(ctx, "Dispatch failed for schedule", "name", entry.Name, "error", err)
	}
}

// Stop halts the cron runner and waits for in-flight jobs.
func (r *Receiver) Stop(ctx context.Context) error {
	r.logger.InfoContext(ctx, "Stopping schedule receiver")

	if r.cron != nil {
		<-r.cron.Stop().Done()
	}

	return nil
}
