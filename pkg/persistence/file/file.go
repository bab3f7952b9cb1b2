// Package file provides file-based persistence for workflows, templates and
// the activity log. Intended for development and tests; each tenant gets its
// own directory subtree.
package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cadenzahq/cadenza/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	templateRepo *TemplateRepository
	activityRepo *ActivityRepository
}

// NewPersistence creates a file persistence rooted at the given directory,
// scoped to the given tenant. Accepts a "file://" prefixed URL.
func NewPersistence(root, tenant string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)
	if tenant != "" {
		cleanRoot = filepath.Join(cleanRoot, tenant)
	}

	// Create the root eagerly so a fresh store passes its health check.
	_ = os.MkdirAll(cleanRoot, 0o755)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		templateRepo: NewTemplateRepository(cleanRoot),
		activityRepo: NewActivityRepository(cleanRoot),
	}
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) TemplateRepository() persistence.TemplateRepository {
	return fp.templateRepo
}

func (fp *Persistence) ActivityRepository() persistence.ActivityRepository {
	return fp.activityRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file persistence there is none.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
