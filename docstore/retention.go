package docstore

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// RetentionManager deletes documents past a configurable age threshold.
// Cleanup is a full metadata scan followed by one batch delete; no index
// on created_at is assumed.
type RetentionManager struct {
	store *DocumentStore
}

// NewRetentionManager creates a RetentionManager over the given store.
func NewRetentionManager(store *DocumentStore) *RetentionManager {
	return &RetentionManager{store: store}
}

// CleanupResult reports the outcome of a Cleanup run.
type CleanupResult struct {
	Removed    int
	CutoffDate string
	MaxAgeDays int
	Err        string
}

// Cleanup removes every document whose created_at is strictly before
// now - maxAgeDays. A document with missing or malformed created_at is
// never eligible: ambiguous age means retain. Backend failures are
// returned in the result so a scheduled job never crashes; the only error
// is ErrUninitialized.
func (m *RetentionManager) Cleanup(ctx context.Context, maxAgeDays int) (CleanupResult, error) {
	idx, err := m.store.handle()
	if err != nil {
		return CleanupResult{}, err
	}

	cutoff := m.store.now().UTC().Add(-time.Duration(maxAgeDays) * 24 * time.Hour).Format(time.RFC3339)
	result := CleanupResult{CutoffDate: cutoff, MaxAgeDays: maxAgeDays}
	runID := uuid.NewString()

	items, err := idx.Scan(ctx, 0)
	if err != nil {
		log.Printf("[RETENTION] run=%s scan failed: err=%v", runID, err)
		result.Err = err.Error()
		return result, nil
	}

	var expired []string
	for _, item := range items {
		createdAt, ok := item.Metadata[MetaCreatedAt].(string)
		if !ok || createdAt == "" {
			continue
		}
		if _, perr := time.Parse(time.RFC3339, createdAt); perr != nil {
			continue
		}
		// RFC 3339 strings at fixed precision sort chronologically.
		if createdAt < cutoff {
			expired = append(expired, item.ID)
		}
	}

	if len(expired) > 0 {
		if err := idx.Delete(ctx, expired); err != nil {
			log.Printf("[RETENTION] run=%s batch delete failed: ids=%d err=%v", runID, len(expired), err)
			result.Err = err.Error()
			return result, nil
		}
	}

	result.Removed = len(expired)
	log.Printf("[RETENTION] run=%s removed %d documents older than %s", runID, result.Removed, cutoff)
	return result, nil
}
