package postgresql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/cadenzahq/cadenza/pkg/persistence"
)

type TemplateRepository struct {
	db     *sql.DB
	tenant string
}

func NewTemplateRepository(db *sql.DB, tenant string) *TemplateRepository {
	return &TemplateRepository{db: db, tenant: tenant}
}

func (tr *TemplateRepository) GetByID(ctx context.Context, id string) (*models.MessageTemplate, error) {
	var template models.MessageTemplate

	err := tr.db.QueryRowContext(ctx, `
		SELECT id, name, subject, body, usage_count, updated_at
		FROM message_templates WHERE tenant = $1 AND id = $2`,
		tr.tenant, id).Scan(&template.ID, &template.Name, &template.Subject,
		&template.Body, &template.UsageCount, &template.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewStoreError("GetByID", "template", id, persistence.ErrTemplateNotFound)
	}

	if err != nil {
		return nil, persistence.NewStoreError("GetByID", "template", id, err)
	}

	return &template, nil
}

func (tr *TemplateRepository) Save(ctx context.Context, template *models.MessageTemplate) error {
	_, err := tr.db.ExecContext(ctx, `
		INSERT INTO message_templates (id, tenant, name, subject, body, usage_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant, id) DO UPDATE SET
			name = EXCLUDED.name,
			subject = EXCLUDED.subject,
			body = EXCLUDED.body,
			usage_count = EXCLUDED.usage_count,
			updated_at = EXCLUDED.updated_at`,
		template.ID, tr.tenant, template.Name, template.Subject, template.Body,
		template.UsageCount, template.UpdatedAt)
	if err != nil {
		return persistence.NewStoreError("Save", "template", template.ID, err)
	}

	return nil
}

// IncrementUsage bumps the usage counter atomically in the database.
func (tr *TemplateRepository) IncrementUsage(ctx context.Context, id string) error {
	result, err := tr.db.ExecContext(ctx, `
		UPDATE message_templates SET usage_count = usage_count + 1
		WHERE tenant = $1 AND id = $2`,
		tr.tenant, id)
	if err != nil {
		return persistence.NewStoreError("IncrementUsage", "template", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("IncrementUsage", "template", id, err)
	}

	if affected == 0 {
		return persistence.NewStoreError("IncrementUsage", "template", id, persistence.ErrTemplateNotFound)
	}

	return nil
}
