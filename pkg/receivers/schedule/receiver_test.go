package schedule

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	triggers []models.TriggerType
	payloads []map[string]any
}

func (d *fakeDispatcher) Dispatch(_ context.Context, triggerType models.TriggerType, payload map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.triggers = append(d.triggers, triggerType)
	d.payloads = append(d.payloads, payload)

	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewReceiver_ValidatesCron(t *testing.T) {
	_, err := NewReceiver([]Entry{
		{Name: "nightly", Cron: "not a cron"},
	}, &fakeDispatcher{}, testLogger())

	assert.ErrorContains(t, err, "invalid cron expression")
}

func TestNewReceiver_RequiresName(t *testing.T) {
	_, err := NewReceiver([]Entry{
		{Cron: "0 9 * * *"},
	}, &fakeDispatcher{}, testLogger())

	assert.ErrorContains(t, err, "name is required")
}

func TestFire_DispatchesTimeDelayEvent(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	receiver, err := NewReceiver([]Entry{
		{Name: "followup", Cron: "0 9 * * *", Payload: map[string]any{"segment": "trial"}},
	}, dispatcher, testLogger())
	require.NoError(t, err)

	receiver.fire(context.Background(), receiver.entries[0])

	require.Len(t, dispatcher.triggers, 1)
	assert.Equal(t, models.TriggerTimeDelay, dispatcher.triggers[0])
	assert.Equal(t, "followup", dispatcher.payloads[0]["schedule"])
	assert.Equal(t, "trial", dispatcher.payloads[0]["segment"])
	assert.NotEmpty(t, dispatcher.payloads[0]["timestamp"])
}
