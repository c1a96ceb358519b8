package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shindakun/csmarket/internal/models"
)

var csvHeader = []string{
	"MarketHashName",
	"Currency",
	"SuggestedPrice",
	"MinPrice",
	"MaxPrice",
	"MeanPrice",
	"MedianPrice",
	"Quantity",
	"UpdatedAt",
}

// WriteCSV writes skins as RFC 4180 CSV.
// The output starts with a UTF-8 BOM so Excel detects the encoding of Cyrillic names.
func WriteCSV(w io.Writer, skins []models.Skin) error {
	if _, err := io.WriteString(w, "\xEF\xBB\xBF"); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, skin := range skins {
		if err := writer.Write(skinToCSVRow(skin)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	return nil
}

// skinToCSVRow converts a skin into its row; missing prices become empty cells
func skinToCSVRow(skin models.Skin) []string {
	return []string{
		skin.MarketHashName,
		skin.Currency,
		csvPrice(skin.SuggestedPrice),
		csvPrice(skin.MinPrice),
		csvPrice(skin.MaxPrice),
		csvPrice(skin.MeanPrice),
		csvPrice(skin.MedianPrice),
		strconv.Itoa(skin.Quantity),
		skin.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func csvPrice(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
