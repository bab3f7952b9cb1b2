package addtocrm

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/cadenzahq/cadenza/pkg/mocks"
	"github.com/cadenzahq/cadenza/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestExecute_WritesWholePayloadByDefault(t *testing.T) {
	gateway := &mocks.MockCRMGateway{}
	gateway.On("Write", mock.Anything, protocol.CRMRecord{
		Collection: "contacts",
		Fields:     map[string]any{"name": "Ada", "email": "ada@example.com"},
	}).Return(protocol.DeliveryResult{Success: true, ID: "rec-1"}, nil)

	action := NewAction(map[string]any{}, gateway)

	result, err := action.Execute(context.Background(), map[string]any{
		"name":  "Ada",
		"email": "ada@example.com",
	}, testLogger())

	require.NoError(t, err)
	assert.Equal(t, "rec-1", result["record_id"])
	gateway.AssertExpectations(t)
}

func TestExecute_FieldMapping(t *testing.T) {
	gateway := &mocks.MockCRMGateway{}
	gateway.On("Write", mock.Anything, protocol.CRMRecord{
		Collection: "leads",
		Fields:     map[string]any{"full_name": "Ada", "deal_size": "5000"},
	}).Return(protocol.DeliveryResult{Success: true}, nil)

	action := NewAction(map[string]any{
		"collection": "leads",
		"fields": map[string]any{
			"full_name": "name",
			"deal_size": "budget",
		},
	}, gateway)

	_, err := action.Execute(context.Background(), map[string]any{
		"name":   "Ada",
		"budget": "5000",
		"extra":  "ignored",
	}, testLogger())

	require.NoError(t, err)
	gateway.AssertExpectations(t)
}

func TestExecute_GatewayFailure(t *testing.T) {
	gateway := &mocks.MockCRMGateway{}
	gateway.On("Write", mock.Anything, mock.Anything).
		Return(protocol.DeliveryResult{}, errors.New("crm unreachable"))

	action := NewAction(map[string]any{}, gateway)

	_, err := action.Execute(context.Background(), map[string]any{"name": "Ada"}, testLogger())
	assert.ErrorContains(t, err, "crm write failed")
}
