package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shindakun/csmarket/internal/models"
)

const skinColumns = `market_hash_name, currency, suggested_price, min_price, max_price,
	mean_price, median_price, quantity, updated_at`

// UpsertSkins inserts or refreshes the price snapshot for each skin in one transaction
func UpsertSkins(db *sql.DB, skins []models.Skin) error {
	if len(skins) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO skins (` + skinColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(market_hash_name) DO UPDATE SET
			currency = excluded.currency,
			suggested_price = excluded.suggested_price,
			min_price = excluded.min_price,
			max_price = excluded.max_price,
			mean_price = excluded.mean_price,
			median_price = excluded.median_price,
			quantity = excluded.quantity,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := range skins {
		s := &skins[i]
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid skin at index %d: %w", i, err)
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = time.Now().UTC()
		}

		if _, err := stmt.Exec(
			s.MarketHashName, s.Currency, s.SuggestedPrice, s.MinPrice, s.MaxPrice,
			s.MeanPrice, s.MedianPrice, s.Quantity, s.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert skin %q: %w", s.MarketHashName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit skins: %w", err)
	}

	return nil
}

// GetSkinsByMarketNames returns the known skins for the given names, keyed by market_hash_name.
// Unknown names are simply absent from the map.
func GetSkinsByMarketNames(db *sql.DB, names []string) (map[string]models.Skin, error) {
	result := make(map[string]models.Skin, len(names))
	if len(names) == 0 {
		return result, nil
	}

	// SQLite caps bound parameters, so look names up in chunks
	const chunkSize = 500
	for start := 0; start < len(names); start += chunkSize {
		end := min(start+chunkSize, len(names))
		chunk := names[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, name := range chunk {
			args[i] = name
		}

		rows, err := db.Query(
			`SELECT `+skinColumns+` FROM skins WHERE market_hash_name IN (`+placeholders+`)`,
			args...,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query skins: %w", err)
		}

		skins, err := scanSkins(rows)
		if err != nil {
			return nil, err
		}
		for _, s := range skins {
			result[s.MarketHashName] = s
		}
	}

	return result, nil
}

// SearchSkins lists skins whose name contains query (case-insensitive), ordered by name
func SearchSkins(db *sql.DB, query string, page, pageSize int) (*models.SkinPage, error) {
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"

	var total int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM skins WHERE market_hash_name LIKE ? ESCAPE '\'`,
		pattern,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count skins: %w", err)
	}

	rows, err := db.Query(
		`SELECT `+skinColumns+` FROM skins
		WHERE market_hash_name LIKE ? ESCAPE '\'
		ORDER BY market_hash_name ASC
		LIMIT ? OFFSET ?`,
		pattern, pageSize, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search skins: %w", err)
	}

	skins, err := scanSkins(rows)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return &models.SkinPage{
		Skins:      skins,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListSkins returns the whole catalog ordered by name
func ListSkins(db *sql.DB) ([]models.Skin, error) {
	rows, err := db.Query(`SELECT ` + skinColumns + ` FROM skins ORDER BY market_hash_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list skins: %w", err)
	}

	return scanSkins(rows)
}

// CountSkins returns the number of skins in the catalog
func CountSkins(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM skins").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count skins: %w", err)
	}
	return count, nil
}

func scanSkins(rows *sql.Rows) ([]models.Skin, error) {
	defer rows.Close()

	skins := []models.Skin{}
	for rows.Next() {
		var s models.Skin
		var suggested, minPrice, maxPrice, mean, median sql.NullFloat64

		if err := rows.Scan(
			&s.MarketHashName, &s.Currency, &suggested, &minPrice, &maxPrice,
			&mean, &median, &s.Quantity, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan skin: %w", err)
		}

		s.SuggestedPrice = nullFloat(suggested)
		s.MinPrice = nullFloat(minPrice)
		s.MaxPrice = nullFloat(maxPrice)
		s.MeanPrice = nullFloat(mean)
		s.MedianPrice = nullFloat(median)

		skins = append(skins, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skins: %w", err)
	}

	return skins, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
