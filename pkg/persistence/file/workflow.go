package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/cadenzahq/cadenza/pkg/persistence"
)

// WorkflowRepository stores each workflow as one JSON file under
// <root>/workflows/<id>.json.
type WorkflowRepository struct {
	root string
}

func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) dir() string {
	return filepath.Join(wr.root, "workflows")
}

func (wr *WorkflowRepository) path(id string) string {
	return filepath.Join(wr.dir(), id+".json")
}

func (wr *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	entries, err := fs.Glob(os.DirFS(wr.dir()), "*.json")
	if err != nil {
		return nil, persistence.NewStoreError("GetAll", "workflow", "", err)
	}

	workflows := make([]*models.Workflow, 0, len(entries))

	for _, entry := range entries {
		id := entry[:len(entry)-len(".json")]

		workflow, err := wr.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (wr *WorkflowRepository) GetByTriggerType(ctx context.Context, triggerType models.TriggerType) ([]*models.Workflow, error) {
	all, err := wr.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	matching := make([]*models.Workflow, 0)

	for _, workflow := range all {
		if workflow.TriggerType == triggerType {
			matching = append(matching, workflow)
		}
	}

	return matching, nil
}

func (wr *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	data, err := os.ReadFile(wr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewStoreError("GetByID", "workflow", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", "workflow", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, persistence.NewStoreError("GetByID", "workflow", id, err)
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if err := os.MkdirAll(wr.dir(), 0o755); err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	if err := os.WriteFile(wr.path(workflow.ID), data, 0o644); err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	return nil
}

func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(wr.path(id))
	if os.IsNotExist(err) {
		return persistence.NewStoreError("Delete", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return persistence.NewStoreError("Delete", "workflow", id, err)
	}

	return nil
}
