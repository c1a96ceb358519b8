package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shindakun/csmarket/internal/models"
)

// WriteJSON writes skins as a pretty-printed JSON array
func WriteJSON(w io.Writer, skins []models.Skin) error {
	if skins == nil {
		skins = []models.Skin{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false) // item names contain '&' and '|'

	if err := encoder.Encode(skins); err != nil {
		return fmt.Errorf("failed to encode skins to JSON: %w", err)
	}

	return nil
}
