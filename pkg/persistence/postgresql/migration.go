package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id VARCHAR(255) PRIMARY KEY,
				tenant VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				trigger_type VARCHAR(64) NOT NULL,
				conditions JSONB NOT NULL DEFAULT '[]',
				actions JSONB NOT NULL DEFAULT '[]',
				delay_minutes INTEGER NOT NULL DEFAULT 0,
				active BOOLEAN NOT NULL DEFAULT FALSE,
				stats JSONB NOT NULL DEFAULT '{"triggered":0,"completed":0,"conversion_rate":0}',
				owner VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_tenant ON workflows(tenant);
			CREATE INDEX IF NOT EXISTS idx_workflows_trigger ON workflows(tenant, trigger_type) WHERE active;

			CREATE TABLE IF NOT EXISTS message_templates (
				id VARCHAR(255) NOT NULL,
				tenant VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				subject TEXT NOT NULL DEFAULT '',
				body TEXT NOT NULL DEFAULT '',
				usage_count INTEGER NOT NULL DEFAULT 0,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (tenant, id)
			);

			CREATE TABLE IF NOT EXISTS activity_entries (
				id VARCHAR(255) PRIMARY KEY,
				tenant VARCHAR(255) NOT NULL,
				action VARCHAR(64) NOT NULL,
				entity_type VARCHAR(64) NOT NULL,
				entity_id VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				metadata JSONB,
				occurred_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_activity_entity ON activity_entries(tenant, entity_type, entity_id);
		`,
	}
}
