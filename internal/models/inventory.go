package models

// InventoryAsset links an owned item instance to its description
type InventoryAsset struct {
	AssetID string `json:"assetid"`
	ClassID string `json:"classid"`
}

// InventoryItem is a Steam economy item description, priced from the catalog
type InventoryItem struct {
	ClassID    string   `json:"classid"`
	MarketName string   `json:"market_name"`
	IconURL    string   `json:"icon_url"`
	Price      *float64 `json:"price"`
	Marketable int      `json:"marketable"`
	Tradable   int      `json:"tradable"`
}

// IsListable reports whether the item can be sold on the marketplace
func (i *InventoryItem) IsListable() bool {
	return i.Marketable == 1 && i.Tradable == 1
}

// Inventory is the Steam community inventory payload for a single app context
type Inventory struct {
	Assets       []InventoryAsset `json:"assets"`
	Descriptions []InventoryItem  `json:"descriptions"`
	TotalCount   int              `json:"total_inventory_count"`
	Success      int              `json:"success"`
}
