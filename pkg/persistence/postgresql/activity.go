package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/cadenzahq/cadenza/pkg/persistence"
)

type ActivityRepository struct {
	db     *sql.DB
	tenant string
}

func NewActivityRepository(db *sql.DB, tenant string) *ActivityRepository {
	return &ActivityRepository{db: db, tenant: tenant}
}

func (ar *ActivityRepository) Append(ctx context.Context, entry *models.ActivityEntry) error {
	var metadata []byte

	if entry.Metadata != nil {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			return persistence.NewStoreError("Append", "activity", entry.ID, err)
		}

		metadata = data
	}

	_, err := ar.db.ExecContext(ctx, `
		INSERT INTO activity_entries (id, tenant, action, entity_type, entity_id, description, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, ar.tenant, entry.Action, entry.EntityType, entry.EntityID,
		entry.Description, metadata, entry.OccurredAt)
	if err != nil {
		return persistence.NewStoreError("Append", "activity", entry.ID, err)
	}

	return nil
}

func (ar *ActivityRepository) List(ctx context.Context, entityType, entityID string) ([]*models.ActivityEntry, error) {
	query := `
		SELECT id, action, entity_type, entity_id, description, metadata, occurred_at
		FROM activity_entries WHERE tenant = $1`
	args := []any{ar.tenant}

	if entityType != "" {
		query += " AND entity_type = $2"
		args = append(args, entityType)
	}

	if entityID != "" {
		query += " AND entity_id = $" + strconv.Itoa(len(args)+1)
		args = append(args, entityID)
	}

	query += " ORDER BY occurred_at"

	rows, err := ar.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistence.NewStoreError("List", "activity", entityID, err)
	}
	defer rows.Close()

	entries := make([]*models.ActivityEntry, 0)

	for rows.Next() {
		var (
			entry    models.ActivityEntry
			metadata sql.NullString
		)

		err := rows.Scan(&entry.ID, &entry.Action, &entry.EntityType,
			&entry.EntityID, &entry.Description, &metadata, &entry.OccurredAt)
		if err != nil {
			return nil, persistence.NewStoreError("List", "activity", entityID, err)
		}

		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
				return nil, persistence.NewStoreError("List", "activity", entry.ID, err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("List", "activity", entityID, err)
	}

	return entries, nil
}
