package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/tunedex/internal/models"
	"github.com/desertthunder/tunedex/internal/shared"
)

// LookupRepository implements models.Repository[*models.CachedLookup] over
// the lookups table.
//
// Rows are stored as a JSON array in rows_json; the normalized query key is
// unique among live rows so repeated runs reuse earlier resolutions.
type LookupRepository struct {
	db *sql.DB
}

// NewLookupRepository creates a new LookupRepository with the given database connection
func NewLookupRepository(db *sql.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// Create inserts a new [models.CachedLookup] with generated ID and sequence
func (r *LookupRepository) Create(lookup *models.CachedLookup) error {
	sequence, err := NextSequence(r.db, "lookups")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	lookup.SetID(id)

	if err := lookup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	rowsJSON, err := json.Marshal(lookup.Rows())
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	query := `
		INSERT INTO lookups (id, sequence, query_key, status, rows_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		lookup.Key(),
		lookup.Status().String(),
		string(rowsJSON),
		lookup.CreatedAt(),
		lookup.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lookup: %w", err)
	}

	return nil
}

// Get retrieves a lookup by ID, excluding soft-deleted rows
func (r *LookupRepository) Get(id string) (*models.CachedLookup, error) {
	query := `
		SELECT id, sequence, query_key, status, rows_json, created_at, updated_at, deleted_at
		FROM lookups
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByKey retrieves a lookup by its normalized query key
func (r *LookupRepository) GetByKey(key string) (*models.CachedLookup, error) {
	query := `
		SELECT id, sequence, query_key, status, rows_json, created_at, updated_at, deleted_at
		FROM lookups
		WHERE query_key = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, key))
}

// Update modifies an existing lookup's status and rows
func (r *LookupRepository) Update(lookup *models.CachedLookup) error {
	if err := lookup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	lookup.SetUpdatedAt(now)

	rowsJSON, err := json.Marshal(lookup.Rows())
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	query := `
		UPDATE lookups
		SET status = ?, rows_json = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, lookup.Status().String(), string(rowsJSON), now, lookup.ID())
	if err != nil {
		return fmt.Errorf("failed to update lookup: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("lookup not found: %s", lookup.ID())
	}

	return nil
}

// Delete soft-deletes a lookup by setting deleted_at
func (r *LookupRepository) Delete(id string) error {
	query := `
		UPDATE lookups
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete lookup: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("lookup not found: %s", id)
	}

	return nil
}

// List retrieves all live lookups ordered by sequence
func (r *LookupRepository) List() ([]*models.CachedLookup, error) {
	query := `
		SELECT id, sequence, query_key, status, rows_json, created_at, updated_at, deleted_at
		FROM lookups
		WHERE deleted_at IS NULL
		ORDER BY sequence
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list lookups: %w", err)
	}
	defer rows.Close()

	var lookups []*models.CachedLookup
	for rows.Next() {
		lookup, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, lookup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lookups: %w", err)
	}

	return lookups, nil
}

// Count returns the number of live cached lookups
func (r *LookupRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM lookups WHERE deleted_at IS NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lookups: %w", err)
	}
	return count, nil
}

// Clear soft-deletes every live lookup and returns how many were cleared
func (r *LookupRepository) Clear() (int, error) {
	result, err := r.db.Exec("UPDATE lookups SET deleted_at = ? WHERE deleted_at IS NULL", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clear lookups: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check clear result: %w", err)
	}

	return int(affected), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *LookupRepository) scanOne(row *sql.Row) (*models.CachedLookup, error) {
	lookup, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lookup not found")
	}
	return lookup, err
}

func (r *LookupRepository) scanRow(row scannable) (*models.CachedLookup, error) {
	var (
		id, key, statusText, rowsJSON string
		sequence                      int
		createdAt, updatedAt          time.Time
		deletedAt                     sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &key, &statusText, &rowsJSON, &createdAt, &updatedAt, &deletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan lookup: %w", err)
	}

	var trackRows []models.TrackRow
	if rowsJSON != "" {
		if err := json.Unmarshal([]byte(rowsJSON), &trackRows); err != nil {
			return nil, fmt.Errorf("failed to decode rows: %w", err)
		}
	}

	lookup := models.NewCachedLookup(sequence, key, parseStatus(statusText), trackRows)
	lookup.SetID(id)
	lookup.SetCreatedAt(createdAt)
	lookup.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		lookup.SetDeletedAt(&deletedAt.Time)
	}

	return lookup, nil
}

func parseStatus(text string) models.Status {
	for _, status := range []models.Status{
		models.StatusFiltered,
		models.StatusUnmatched,
		models.StatusMatched,
		models.StatusAlbumExpanded,
	} {
		if status.String() == text {
			return status
		}
	}
	return models.StatusPending
}
