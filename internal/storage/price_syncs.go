package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shindakun/csmarket/internal/models"
)

// CreatePriceSync records a new price sync run
func CreatePriceSync(db *sql.DB, sync *models.PriceSync) error {
	if err := sync.Validate(); err != nil {
		return fmt.Errorf("invalid price sync: %w", err)
	}

	query := `
		INSERT INTO price_syncs (id, status, item_count, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		sync.ID, sync.Status, sync.ItemCount, sync.ErrorMessage, sync.StartedAt, sync.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create price sync: %w", err)
	}

	return nil
}

// UpdatePriceSync updates an existing price sync run
func UpdatePriceSync(db *sql.DB, sync *models.PriceSync) error {
	if err := sync.Validate(); err != nil {
		return fmt.Errorf("invalid price sync: %w", err)
	}

	query := `
		UPDATE price_syncs
		SET status = ?, item_count = ?, error = ?, completed_at = ?
		WHERE id = ?
	`

	result, err := db.Exec(query,
		sync.Status, sync.ItemCount, sync.ErrorMessage, sync.CompletedAt, sync.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update price sync: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("price sync not found: %s", sync.ID)
	}

	return nil
}

// GetActivePriceSync returns the pending or running sync, or nil when idle
func GetActivePriceSync(db *sql.DB) (*models.PriceSync, error) {
	sync, err := getPriceSync(db, `
		SELECT id, status, item_count, error, started_at, completed_at
		FROM price_syncs
		WHERE status IN ('pending', 'running')
		ORDER BY started_at DESC
		LIMIT 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active price sync: %w", err)
	}
	return sync, nil
}

// FailInterruptedPriceSyncs marks syncs left pending or running by a previous
// server process as failed and returns how many were reset.
// Only the process that owns the updater may call it: other processes
// sharing the database would fail a sync that is still in flight.
func FailInterruptedPriceSyncs(db *sql.DB) (int64, error) {
	res, err := db.Exec(`
		UPDATE price_syncs
		SET status = ?, error = 'interrupted by restart', completed_at = ?
		WHERE status IN (?, ?)
	`, models.PriceSyncStatusFailed, time.Now(), models.PriceSyncStatusPending, models.PriceSyncStatusRunning)
	if err != nil {
		return 0, fmt.Errorf("failed to reset interrupted price syncs: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count reset price syncs: %w", err)
	}
	return n, nil
}

// GetLatestPriceSync returns the most recently started sync, or nil if none ran yet
func GetLatestPriceSync(db *sql.DB) (*models.PriceSync, error) {
	sync, err := getPriceSync(db, `
		SELECT id, status, item_count, error, started_at, completed_at
		FROM price_syncs
		ORDER BY started_at DESC
		LIMIT 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price sync: %w", err)
	}
	return sync, nil
}

func getPriceSync(db *sql.DB, query string, args ...any) (*models.PriceSync, error) {
	var sync models.PriceSync
	var completedAt sql.NullTime

	err := db.QueryRow(query, args...).Scan(
		&sync.ID, &sync.Status, &sync.ItemCount, &sync.ErrorMessage, &sync.StartedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		sync.CompletedAt = &completedAt.Time
	}

	return &sync, nil
}
