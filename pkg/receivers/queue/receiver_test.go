package queue

import (
	"log/slog"
	"os"
	"testing"

	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewReceiver_RequiresQueue(t *testing.T) {
	_, err := NewReceiver(Config{}, nil, testLogger())

	assert.ErrorContains(t, err, "queue name is required")
}

func TestNewReceiver_DefaultsAddr(t *testing.T) {
	receiver, err := NewReceiver(Config{Queue: "events"}, nil, testLogger())

	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", receiver.config.Addr)
}

func TestDecodeMessage(t *testing.T) {
	triggerType, payload, err := decodeMessage(`{
		"trigger_type": "form_submission",
		"payload": {"email": "ada@example.com", "budget": 5000}
	}`)

	require.NoError(t, err)
	assert.Equal(t, models.TriggerFormSubmission, triggerType)
	assert.Equal(t, "ada@example.com", payload["email"])
}

func TestDecodeMessage_MissingPayload(t *testing.T) {
	_, payload, err := decodeMessage(`{"trigger_type": "new_lead"}`)

	require.NoError(t, err)
	assert.NotNil(t, payload)
}

func TestDecodeMessage_InvalidJSON(t *testing.T) {
	_, _, err := decodeMessage(`{not json`)

	assert.ErrorContains(t, err, "invalid message JSON")
}

func TestDecodeMessage_UnknownTriggerType(t *testing.T) {
	_, _, err := decodeMessage(`{"trigger_type": "meteor_strike", "payload": {}}`)

	assert.ErrorContains(t, err, "unknown trigger type")
}
