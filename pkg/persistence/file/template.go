package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/cadenzahq/cadenza/pkg/persistence"
)

// TemplateRepository stores each message template as one JSON file under
// <root>/templates/<id>.json. The mutex serializes usage counter bumps.
type TemplateRepository struct {
	root string
	mu   sync.Mutex
}

func NewTemplateRepository(root string) *TemplateRepository {
	return &TemplateRepository{root: root}
}

func (tr *TemplateRepository) dir() string {
	return filepath.Join(tr.root, "templates")
}

func (tr *TemplateRepository) path(id string) string {
	return filepath.Join(tr.dir(), id+".json")
}

func (tr *TemplateRepository) GetByID(_ context.Context, id string) (*models.MessageTemplate, error) {
	data, err := os.ReadFile(tr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewStoreError("GetByID", "template", id, persistence.ErrTemplateNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", "template", id, err)
	}

	var template models.MessageTemplate
	if err := json.Unmarshal(data, &template); err != nil {
		return nil, persistence.NewStoreError("GetByID", "template", id, err)
	}

	return &template, nil
}

func (tr *TemplateRepository) Save(_ context.Context, template *models.MessageTemplate) error {
	if err := os.MkdirAll(tr.dir(), 0o755); err != nil {
		return persistence.NewStoreError("Save", "template", template.ID, err)
	}

	data, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return persistence.NewStoreError("Save", "template", template.ID, err)
	}

	if err := os.WriteFile(tr.path(template.ID), data, 0o644); err != nil {
		return persistence.NewStoreError("Save", "template", template.ID, err)
	}

	return nil
}

// IncrementUsage bumps the usage counter by one. The read-modify-write runs
// under the repository mutex so concurrent senders never lose counts.
func (tr *TemplateRepository) IncrementUsage(ctx context.Context, id string) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	template, err := tr.GetByID(ctx, id)
	if err != nil {
		return err
	}

	template.UsageCount++

	return tr.Save(ctx, template)
}
