package models

import (
	"errors"
	"testing"
	"time"
)

func TestSkinValidate(t *testing.T) {
	tests := []struct {
		name    string
		skin    Skin
		wantErr bool
	}{
		{name: "valid", skin: Skin{MarketHashName: "AK-47 | Redline (Field-Tested)"}},
		{name: "missing name", skin: Skin{Quantity: 1}, wantErr: true},
		{name: "negative quantity", skin: Skin{MarketHashName: "x", Quantity: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.skin.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSkinPagePaging(t *testing.T) {
	page := &SkinPage{Page: 1, TotalPages: 3}
	if page.HasPrev() || !page.HasNext() {
		t.Error("first page should only have a next page")
	}

	page.Page = 3
	if !page.HasPrev() || page.HasNext() {
		t.Error("last page should only have a previous page")
	}

	empty := &SkinPage{Page: 1}
	if empty.HasPrev() || empty.HasNext() {
		t.Error("empty result has no neighbours")
	}
}

func TestPriceSyncFinish(t *testing.T) {
	started := time.Now().Add(-time.Second)

	ok := &PriceSync{ID: "a", Status: PriceSyncStatusRunning, StartedAt: started}
	if !ok.IsActive() || ok.Duration() != 0 {
		t.Fatal("running sync should be active with zero duration")
	}
	ok.Finish(42, nil)
	if ok.Status != PriceSyncStatusCompleted || ok.ItemCount != 42 || ok.ErrorMessage != "" {
		t.Errorf("unexpected completed sync %+v", ok)
	}
	if ok.IsActive() || ok.Duration() < time.Second {
		t.Errorf("finished sync should be inactive with a duration, got %v", ok.Duration())
	}

	failed := &PriceSync{ID: "b", Status: PriceSyncStatusRunning, StartedAt: started}
	failed.Finish(0, errors.New("upstream returned 502"))
	if failed.Status != PriceSyncStatusFailed || failed.ErrorMessage != "upstream returned 502" {
		t.Errorf("unexpected failed sync %+v", failed)
	}
}

func TestPriceSyncValidate(t *testing.T) {
	valid := PriceSync{ID: "a", Status: PriceSyncStatusPending, StartedAt: time.Now()}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	bad := valid
	bad.Status = "paused"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown status")
	}

	bad = valid
	bad.ID = ""
	if err := bad.Validate(); err == nil {
		t.Error("expected error for missing id")
	}
}

func TestInventoryItemIsListable(t *testing.T) {
	tests := []struct {
		item InventoryItem
		want bool
	}{
		{InventoryItem{Marketable: 1, Tradable: 1}, true},
		{InventoryItem{Marketable: 1, Tradable: 0}, false},
		{InventoryItem{Marketable: 0, Tradable: 1}, false},
	}

	for _, tt := range tests {
		if got := tt.item.IsListable(); got != tt.want {
			t.Errorf("IsListable(%+v) = %v, want %v", tt.item, got, tt.want)
		}
	}
}
