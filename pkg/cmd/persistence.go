package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cadenzahq/cadenza/pkg/persistence"
	"github.com/cadenzahq/cadenza/pkg/persistence/file"
	"github.com/cadenzahq/cadenza/pkg/persistence/postgresql"
)

// NewPersistence builds a tenant-scoped store from a database URL. Postgres
// URLs get the real database; anything else falls back to file storage.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL, tenant string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL, tenant)
		if err != nil {
			panic(err)
		}

		return store
	default:
		return file.NewPersistence(databaseURL, tenant)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	return parts[0]
}
