package repositories

import (
	"fmt"
	"strings"

	"github.com/desertthunder/tunedex/internal/models"
)

// LookupCacheAdapter implements tasks.LookupCacher using LookupRepository.
//
// Provides resolution memoization keyed on normalized queries. Duplicate
// keys are silently ignored (UNIQUE constraint violations), so two runs
// racing on the same query never fail the pipeline.
type LookupCacheAdapter struct {
	repo *LookupRepository
}

// NewLookupCacheAdapter creates a new LookupCacheAdapter with the given repository
func NewLookupCacheAdapter(repo *LookupRepository) *LookupCacheAdapter {
	return &LookupCacheAdapter{repo: repo}
}

// Lookup returns the memoized outcome for a query key, or ok false on a
// cache miss. Cache read failures degrade to a miss rather than failing
// the run.
func (a *LookupCacheAdapter) Lookup(key string) (models.Status, []models.TrackRow, bool) {
	lookup, err := a.repo.GetByKey(key)
	if err != nil || lookup == nil {
		return models.StatusPending, nil, false
	}
	return lookup.Status(), lookup.Rows(), true
}

// Store memoizes a resolved outcome.
// Returns nil if the key already exists (deduplication).
// Only returns errors for actual failures (not constraint violations).
func (a *LookupCacheAdapter) Store(key string, status models.Status, rows []models.TrackRow) error {
	existing, err := a.repo.GetByKey(key)
	if err == nil && existing != nil {
		return nil
	}

	lookup := models.NewCachedLookup(0, key, status, rows)

	if err := a.repo.Create(lookup); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache lookup: %w", err)
	}

	return nil
}
