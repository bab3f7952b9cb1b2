package file

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cadenzahq/cadenza/pkg/models"
	"github.com/cadenzahq/cadenza/pkg/persistence"
)

// ActivityRepository appends activity entries to <root>/activity.jsonl,
// one JSON object per line.
type ActivityRepository struct {
	root string
	mu   sync.Mutex
}

func NewActivityRepository(root string) *ActivityRepository {
	return &ActivityRepository{root: root}
}

func (ar *ActivityRepository) path() string {
	return filepath.Join(ar.root, "activity.jsonl")
}

func (ar *ActivityRepository) Append(_ context.Context, entry *models.ActivityEntry) error {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	if err := os.MkdirAll(ar.root, 0o755); err != nil {
		return persistence.NewStoreError("Append", "activity", entry.ID, err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return persistence.NewStoreError("Append", "activity", entry.ID, err)
	}

	f, err := os.OpenFile(ar.path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return persistence.NewStoreError("Append", "activity", entry.ID, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return persistence.NewStoreError("Append", "activity", entry.ID, err)
	}

	return nil
}

func (ar *ActivityRepository) List(_ context.Context, entityType, entityID string) ([]*models.ActivityEntry, error) {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	f, err := os.Open(ar.path())
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.ActivityEntry{}, nil
		}

		return nil, persistence.NewStoreError("List", "activity", entityID, err)
	}
	defer f.Close()

	entries := make([]*models.ActivityEntry, 0)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		var entry models.ActivityEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue // skip torn writes rather than failing the whole listing
		}

		if entityType != "" && entry.EntityType != entityType {
			continue
		}

		if entityID != "" && entry.EntityID != entityID {
			continue
		}

		entries = append(entries, &entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, persistence.NewStoreError("List", "activity", entityID, err)
	}

	return entries, nil
}
