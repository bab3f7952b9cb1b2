package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/cadenzahq/cadenza/pkg/persistence"
)

// WorkflowRepository stores workflows in the workflows table. Conditions,
// actions and stats are serialized as JSONB.
type WorkflowRepository struct {
	db     *sql.DB
	tenant string
}

func NewWorkflowRepository(db *sql.DB, tenant string) *WorkflowRepository {
	return &WorkflowRepository{db: db, tenant: tenant}
}

const workflowColumns = `id, name, description, trigger_type, conditions, actions,
	delay_minutes, active, stats, owner, created_at, updated_at`

func (wr *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := wr.db.QueryContext(ctx,
		"SELECT "+workflowColumns+" FROM workflows WHERE tenant = $1 ORDER BY created_at",
		wr.tenant)
	if err != nil {
		return nil, persistence.NewStoreError("GetAll", "workflow", "", err)
	}
	defer rows.Close()

	return scanWorkflows(rows)
}

func (wr *WorkflowRepository) GetByTriggerType(ctx context.Context, triggerType models.TriggerType) ([]*models.Workflow, error) {
	rows, err := wr.db.QueryContext(ctx,
		"SELECT "+workflowColumns+" FROM workflows WHERE tenant = $1 AND trigger_type = $2 ORDER BY created_at",
		wr.tenant, string(triggerType))
	if err != nil {
		return nil, persistence.NewStoreError("GetByTriggerType", "workflow", "", err)
	}
	defer rows.Close()

	return scanWorkflows(rows)
}

func (wr *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := wr.db.QueryRowContext(ctx,
		"SELECT "+workflowColumns+" FROM workflows WHERE tenant = $1 AND id = $2",
		wr.tenant, id)

	workflow, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewStoreError("GetByID", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, persistence.NewStoreError("GetByID", "workflow", id, err)
	}

	return workflow, nil
}

func (wr *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	conditions, err := json.Marshal(workflow.Conditions)
	if err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	actions, err := json.Marshal(workflow.Actions)
	if err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	stats, err := json.Marshal(workflow.Stats)
	if err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	_, err = wr.db.ExecContext(ctx, `
		INSERT INTO workflows (id, tenant, name, description, trigger_type, conditions,
			actions, delay_minutes, active, stats, owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			trigger_type = EXCLUDED.trigger_type,
			conditions = EXCLUDED.conditions,
			actions = EXCLUDED.actions,
			delay_minutes = EXCLUDED.delay_minutes,
			active = EXCLUDED.active,
			stats = EXCLUDED.stats,
			owner = EXCLUDED.owner,
			updated_at = EXCLUDED.updated_at`,
		workflow.ID, wr.tenant, workflow.Name, workflow.Description,
		string(workflow.TriggerType), conditions, actions, workflow.DelayMinutes,
		workflow.Active, stats, workflow.Owner, workflow.CreatedAt, workflow.UpdatedAt)
	if err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	return nil
}

func (wr *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := wr.db.ExecContext(ctx,
		"DELETE FROM workflows WHERE tenant = $1 AND id = $2", wr.tenant, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "workflow", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("Delete", "workflow", id, err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow   models.Workflow
		conditions []byte
		actions    []byte
		stats      []byte
	)

	err := row.Scan(&workflow.ID, &workflow.Name, &workflow.Description,
		&workflow.TriggerType, &conditions, &actions, &workflow.DelayMinutes,
		&workflow.Active, &stats, &workflow.Owner, &workflow.CreatedAt,
		&workflow.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(conditions, &workflow.Conditions); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(actions, &workflow.Actions); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(stats, &workflow.Stats); err != nil {
		return nil, err
	}

	return &workflow, nil
}

func scanWorkflows(rows *sql.Rows) ([]*models.Workflow, error) {
	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, persistence.NewStoreError("Scan", "workflow", "", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("Scan", "workflow", "", err)
	}

	return workflows, nil
}
