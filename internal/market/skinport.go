package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/shindakun/csmarket/internal/models"
)

// SkinportClient pulls the public item price list from the Skinport API
type SkinportClient struct {
	httpClient *http.Client
	sourceURL  string
	appID      int
	currency   string
}

// skinportItem mirrors one entry of the /v1/items response
type skinportItem struct {
	MarketHashName string   `json:"market_hash_name"`
	Currency       string   `json:"currency"`
	SuggestedPrice *float64 `json:"suggested_price"`
	ItemPage       string   `json:"item_page"`
	MarketPage     string   `json:"market_page"`
	MinPrice       *float64 `json:"min_price"`
	MaxPrice       *float64 `json:"max_price"`
	MeanPrice      *float64 `json:"mean_price"`
	MedianPrice    *float64 `json:"median_price"`
	Quantity       int      `json:"quantity"`
	CreatedAt      int64    `json:"created_at"`
	UpdatedAt      int64    `json:"updated_at"`
}

// NewSkinportClient creates a client for the given items endpoint
func NewSkinportClient(httpClient *http.Client, sourceURL string, appID int, currency string) *SkinportClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &SkinportClient{
		httpClient: httpClient,
		sourceURL:  sourceURL,
		appID:      appID,
		currency:   currency,
	}
}

// FetchItems downloads the full price list.
// The API only serves brotli-compressed responses to clients that ask for it.
func (c *SkinportClient) FetchItems(ctx context.Context) ([]models.Skin, error) {
	u, err := url.Parse(c.sourceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url: %w", err)
	}

	q := u.Query()
	q.Set("app_id", strconv.Itoa(c.appID))
	q.Set("currency", c.currency)
	q.Set("tradable", "0")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Setting Accept-Encoding ourselves disables transparent gzip in net/http
	req.Header.Set("Accept-Encoding", "br")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("price feed returned status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Encoding")), "br") {
		body = brotli.NewReader(resp.Body)
	}

	var items []skinportItem
	if err := json.NewDecoder(body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode price feed: %w", err)
	}

	skins := make([]models.Skin, 0, len(items))
	for _, item := range items {
		if item.MarketHashName == "" {
			continue
		}

		updatedAt := time.Now().UTC()
		if item.UpdatedAt > 0 {
			updatedAt = time.Unix(item.UpdatedAt, 0).UTC()
		}

		skins = append(skins, models.Skin{
			MarketHashName: item.MarketHashName,
			Currency:       item.Currency,
			SuggestedPrice: item.SuggestedPrice,
			MinPrice:       item.MinPrice,
			MaxPrice:       item.MaxPrice,
			MeanPrice:      item.MeanPrice,
			MedianPrice:    item.MedianPrice,
			Quantity:       max(item.Quantity, 0),
			UpdatedAt:      updatedAt,
		})
	}

	return skins, nil
}
