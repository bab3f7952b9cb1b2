package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/cadenzahq/cadenza/pkg/engine"
	"github.com/cadenzahq/cadenza/pkg/mocks"
	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/cadenzahq/cadenza/pkg/otelhelper"
	"github.com/cadenzahq/cadenza/pkg/persistence/file"
	"github.com/cadenzahq/cadenza/pkg/registry"
	"github.com/cadenzahq/cadenza/pkg/scheduler"
	"github.com/cadenzahq/cadenza/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := file.NewPersistence(t.TempDir(), "acme")
	eng := engine.NewEngine(
		store,
		registry.NewRegistry(logger),
		scheduler.NewScheduler(logger),
		mocks.NewRecordingEventBus(),
		otelhelper.NoopTracer(),
		logger,
	)

	handlers := web.NewAPIHandlers(eng, store, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/toggle", handlers.ToggleWorkflow)
	w.Get("/:id/activity", handlers.GetWorkflowActivity)

	app.Post("/events", handlers.DispatchEvent)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, respBody
}

func createWorkflow(t *testing.T, app *fiber.App, req web.CreateWorkflowRequest) models.Workflow {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var workflow models.Workflow
	require.NoError(t, json.Unmarshal(body, &workflow))

	return workflow
}

func TestCreateWorkflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    web.CreateWorkflowRequest
		expectedStatus int
	}{
		{
			name: "successful creation",
			requestBody: web.CreateWorkflowRequest{
				Name:        "Lead welcome",
				Description: "Greets new leads",
				TriggerType: models.TriggerNewLead,
				Actions: []models.Action{
					{Type: models.ActionSendEmail, Template: "welcome"},
				},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "validation error - missing name",
			requestBody: web.CreateWorkflowRequest{
				TriggerType: models.TriggerNewLead,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "validation error - name too short",
			requestBody: web.CreateWorkflowRequest{
				Name:        "Le",
				TriggerType: models.TriggerNewLead,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "validation error - unknown trigger type",
			requestBody: web.CreateWorkflowRequest{
				Name:        "Lead welcome",
				TriggerType: "meteor_strike",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			app := setupTestApp(t)

			resp, body := doJSON(t, app, http.MethodPost, "/workflows/", tc.requestBody)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode, string(body))

			if tc.expectedStatus == http.StatusCreated {
				var workflow models.Workflow
				require.NoError(t, json.Unmarshal(body, &workflow))
				assert.NotEmpty(t, workflow.ID)
				assert.False(t, workflow.Active)
				assert.Equal(t, models.WorkflowStats{}, workflow.Stats)
			}
		})
	}
}

func TestGetWorkflow_NotFound(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/workflows/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateWorkflow(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	created := createWorkflow(t, app, web.CreateWorkflowRequest{
		Name:        "Old name",
		TriggerType: models.TriggerNewLead,
	})

	resp, body := doJSON(t, app, http.MethodPatch, "/workflows/"+created.ID,
		map[string]any{"name": "New name", "delay_minutes": 30})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var updated models.Workflow
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "New name", updated.Name)
	assert.Equal(t, 30, updated.DelayMinutes)
}

func TestUpdateWorkflow_NotFound(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPatch, "/workflows/missing",
		map[string]any{"name": "New name"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleWorkflow(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	created := createWorkflow(t, app, web.CreateWorkflowRequest{
		Name:        "Toggle me",
		TriggerType: models.TriggerNewLead,
	})

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var toggled models.Workflow
	require.NoError(t, json.Unmarshal(body, &toggled))
	assert.True(t, toggled.Active)
}

func TestDeleteWorkflow(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	created := createWorkflow(t, app, web.CreateWorkflowRequest{
		Name:        "Delete me",
		TriggerType: models.TriggerNewLead,
	})

	resp, _ := doJSON(t, app, http.MethodDelete, "/workflows/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/workflows/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDispatchEvent(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	created := createWorkflow(t, app, web.CreateWorkflowRequest{
		Name:        "Counter",
		TriggerType: models.TriggerFormSubmission,
	})

	resp, _ := doJSON(t, app, http.MethodPost, "/workflows/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/events", web.DispatchRequest{
		TriggerType: models.TriggerFormSubmission,
		Payload:     map[string]any{"email": "ada@example.com"},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))

	resp, body = doJSON(t, app, http.MethodGet, "/workflows/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var workflow models.Workflow
	require.NoError(t, json.Unmarshal(body, &workflow))
	assert.Equal(t, models.WorkflowStats{Triggered: 1, Completed: 1, ConversionRate: 100}, workflow.Stats)
}

func TestDispatchEvent_UnknownTriggerType(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/events", web.DispatchRequest{
		TriggerType: "meteor_strike",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetWorkflows(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	createWorkflow(t, app, web.CreateWorkflowRequest{Name: "First", TriggerType: models.TriggerNewLead})
	createWorkflow(t, app, web.CreateWorkflowRequest{Name: "Second", TriggerType: models.TriggerTagAdded})

	resp, body := doJSON(t, app, http.MethodGet, "/workflows/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, 2, result.Count)
}

func TestGetWorkflowActivity(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	created := createWorkflow(t, app, web.CreateWorkflowRequest{
		Name:        "Audited",
		TriggerType: models.TriggerNewLead,
	})

	resp, body := doJSON(t, app, http.MethodGet, "/workflows/"+created.ID+"/activity", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Count    int                     `json:"count"`
		Activity []*models.ActivityEntry `json:"activity"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "create", result.Activity[0].Action)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
