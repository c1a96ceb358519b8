// Package exporter writes the price catalog in downloadable formats.
package exporter

import (
	"fmt"
	"io"

	"github.com/shindakun/csmarket/internal/models"
)

// Format is a catalog export format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name taken from a URL or flag
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the attachment name for a catalog export
func (f Format) Filename() string {
	return "prices." + string(f)
}

// Write encodes skins to w in the requested format
func Write(w io.Writer, format Format, skins []models.Skin) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, skins)
	case FormatJSON:
		return WriteJSON(w, skins)
	}
	return fmt.Errorf("unsupported export format %q", format)
}
