package models

import (
	"fmt"
	"time"
)

// Skin is a tradable CS2 item with its latest market prices.
// Prices are nullable because the feed omits them for items with no listings.
type Skin struct {
	MarketHashName string    `json:"market_hash_name"`
	Currency       string    `json:"currency"`
	SuggestedPrice *float64  `json:"suggested_price"`
	MinPrice       *float64  `json:"min_price"`
	MaxPrice       *float64  `json:"max_price"`
	MeanPrice      *float64  `json:"mean_price"`
	MedianPrice    *float64  `json:"median_price"`
	Quantity       int       `json:"quantity"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Validate checks if the skin fields are valid
func (s *Skin) Validate() error {
	if s.MarketHashName == "" {
		return fmt.Errorf("market_hash_name is required")
	}

	if s.Quantity < 0 {
		return fmt.Errorf("quantity must be non-negative")
	}

	return nil
}

// HasPrice reports whether the skin currently has a listed minimum price
func (s *Skin) HasPrice() bool {
	return s.MinPrice != nil
}

// SkinPage is one page of catalog search results
type SkinPage struct {
	Skins      []Skin
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// HasPrev reports whether there is a page before this one
func (p *SkinPage) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether there is a page after this one
func (p *SkinPage) HasNext() bool {
	return p.Page < p.TotalPages
}
