package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// InitDB initializes the SQLite database with production settings
func InitDB(path string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// - journal_mode(WAL): readers don't block the price sync writer
	// - synchronous(NORMAL): safe for WAL mode
	// - busy_timeout(5000): wait up to 5 seconds if database is locked
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=temp_store(memory)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 16MB cache (-16000 pages of 1KB each)
	if _, err := db.Exec("PRAGMA cache_size = -16000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set cache size: %w", err)
	}

	// Set connection pool limits (SQLite needs single writer)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// runMigrations creates all necessary tables and indices
func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Latest price snapshot per item, keyed like the Skinport feed
		`CREATE TABLE IF NOT EXISTS skins (
			market_hash_name TEXT PRIMARY KEY,
			currency TEXT NOT NULL DEFAULT '',
			suggested_price REAL,
			min_price REAL,
			max_price REAL,
			mean_price REAL,
			median_price REAL,
			quantity INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL,
			CHECK (quantity >= 0)
		)`,

		`CREATE TABLE IF NOT EXISTS price_syncs (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			item_count INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_skins_updated_at ON skins(updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_price_syncs_started_at ON price_syncs(started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_price_syncs_status ON price_syncs(status)`,
	}

	// Execute migrations in a transaction
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, migration := range migrations {
		if _, err := tx.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (1)"); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	return nil
}
