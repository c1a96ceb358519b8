package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shindakun/csmarket/internal/models"
)

func price(v float64) *float64 { return &v }

func testSkins() []models.Skin {
	updated := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.Skin{
		{
			MarketHashName: "AK-47 | Redline (Field-Tested)",
			Currency:       "RUB",
			SuggestedPrice: price(1600),
			MinPrice:       price(1499.99),
			MaxPrice:       price(2100.5),
			MeanPrice:      price(1700),
			MedianPrice:    price(1650),
			Quantity:       1200,
			UpdatedAt:      updated,
		},
		{
			MarketHashName: `Sticker | "Crown" & Co, Foil`,
			Currency:       "RUB",
			Quantity:       0,
			UpdatedAt:      updated,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testSkins()); err != nil {
		t.Fatalf("WriteCSV() failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\xEF\xBB\xBF") {
		t.Fatal("CSV should start with a UTF-8 BOM")
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\xEF\xBB\xBF"))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2", len(records))
	}
	if len(records[0]) != len(csvHeader) || records[0][0] != "MarketHashName" {
		t.Errorf("unexpected header %v", records[0])
	}

	first := records[1]
	if first[3] != "1499.99" || first[4] != "2100.50" || first[7] != "1200" {
		t.Errorf("unexpected first row %v", first)
	}
	if first[8] != "2025-03-01T12:00:00Z" {
		t.Errorf("UpdatedAt = %q", first[8])
	}

	second := records[2]
	if second[0] != `Sticker | "Crown" & Co, Foil` {
		t.Errorf("name with quotes and commas did not round trip: %q", second[0])
	}
	for i := 2; i <= 6; i++ {
		if second[i] != "" {
			t.Errorf("missing price column %d = %q, want empty", i, second[i])
		}
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("empty catalog should produce only the header, got %d lines", len(lines))
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testSkins()); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}

	if strings.Contains(buf.String(), `\u0026`) {
		t.Error("ampersands should not be HTML-escaped")
	}

	var decoded []models.Skin
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d skins, want 2", len(decoded))
	}
	if decoded[1].MinPrice != nil {
		t.Error("missing price should stay null")
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty export = %q, want []", got)
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"csv", "json"} {
		f, err := ParseFormat(name)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", name, err)
		}
		if f.Filename() != "prices."+name {
			t.Errorf("Filename() = %q", f.Filename())
		}
	}

	if _, err := ParseFormat("xlsx"); err == nil {
		t.Error("expected error for unsupported format")
	}
	if err := Write(&bytes.Buffer{}, Format("xml"), nil); err == nil {
		t.Error("Write should reject unknown formats")
	}
}
