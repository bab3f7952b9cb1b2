package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cadenzahq/cadenza/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailGateway_Send(t *testing.T) {
	var received protocol.EmailMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(protocol.DeliveryResult{Success: true, ID: "msg-7"})
	}))
	defer server.Close()

	gateway := NewEmailGateway(server.URL)

	result, err := gateway.Send(context.Background(), protocol.EmailMessage{
		To:      "ada@example.com",
		Subject: "Hi",
		Body:    "Welcome",
	})

	require.NoError(t, err)
	assert.Equal(t, protocol.DeliveryResult{Success: true, ID: "msg-7"}, result)
	assert.Equal(t, "ada@example.com", received.To)
}

func TestSMSGateway_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(protocol.DeliveryResult{Success: true})
	}))
	defer server.Close()

	gateway := NewSMSGateway(server.URL, WithToken("secret"))

	_, err := gateway.Send(context.Background(), protocol.SMSMessage{To: "+15550100", Body: "hi"})
	require.NoError(t, err)
}

func TestCRMGateway_Write(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var record protocol.CRMRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&record))
		assert.Equal(t, "contacts", record.Collection)

		json.NewEncoder(w).Encode(protocol.DeliveryResult{Success: true, ID: "rec-1"})
	}))
	defer server.Close()

	gateway := NewCRMGateway(server.URL)

	result, err := gateway.Write(context.Background(), protocol.CRMRecord{
		Collection: "contacts",
		Fields:     map[string]any{"name": "Ada"},
	})

	require.NoError(t, err)
	assert.Equal(t, "rec-1", result.ID)
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	gateway := NewEmailGateway(server.URL)

	_, err := gateway.Send(context.Background(), protocol.EmailMessage{To: "a@b.c"})
	assert.ErrorContains(t, err, "status 502")
}
