package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shindakun/csmarket/internal/models"
)

const (
	cs2AppID     = 730
	cs2ContextID = 2
)

// SteamClient reads public inventories from steamcommunity.com
type SteamClient struct {
	httpClient *http.Client
	sourceURL  string
}

// NewSteamClient creates a client rooted at the community inventory endpoint
func NewSteamClient(httpClient *http.Client, sourceURL string) *SteamClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &SteamClient{
		httpClient: httpClient,
		sourceURL:  strings.TrimRight(sourceURL, "/"),
	}
}

// FetchInventory returns the CS2 inventory of a SteamID64
func (c *SteamClient) FetchInventory(ctx context.Context, steamID string) (*models.Inventory, error) {
	endpoint := fmt.Sprintf("%s/%s/%d/%d?l=english&count=5000", c.sourceURL, steamID, cs2AppID, cs2ContextID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrInventoryPrivate
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("steam returned status %d", resp.StatusCode)
	}

	var inv models.Inventory
	if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}

	return &inv, nil
}
