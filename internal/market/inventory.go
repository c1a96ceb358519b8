package market

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/shindakun/csmarket/internal/metrics"
	"github.com/shindakun/csmarket/internal/models"
	"github.com/shindakun/csmarket/internal/storage"
)

// DefaultIconBaseURL is the Steam CDN prefix for economy item icons
const DefaultIconBaseURL = "https://community.cloudflare.steamstatic.com/economy/image/"

var steamID64Pattern = regexp.MustCompile(`^7656119\d{10}$`)

// ValidSteamID reports whether id looks like an individual account SteamID64
func ValidSteamID(id string) bool {
	return steamID64Pattern.MatchString(id)
}

// InventoryFetcher loads a raw Steam inventory
type InventoryFetcher interface {
	FetchInventory(ctx context.Context, steamID string) (*models.Inventory, error)
}

// InventoryOptions tunes caching and upstream pacing
type InventoryOptions struct {
	IconBaseURL       string
	CacheSize         int
	CacheTTL          time.Duration
	RequestsPerWindow int
	WindowDuration    time.Duration
	Burst             int
}

// InventoryService turns Steam inventories into priced, listable items
type InventoryService struct {
	db       *sql.DB
	fetcher  InventoryFetcher
	limiter  *RateLimiter
	cache    *expirable.LRU[string, []models.InventoryItem]
	iconBase string
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewInventoryService creates an inventory service
func NewInventoryService(db *sql.DB, fetcher InventoryFetcher, opts InventoryOptions, logger *zap.Logger, m *metrics.Metrics) *InventoryService {
	iconBase := opts.IconBaseURL
	if iconBase == "" {
		iconBase = DefaultIconBaseURL
	}

	return &InventoryService{
		db:       db,
		fetcher:  fetcher,
		limiter:  NewRateLimiter(opts.RequestsPerWindow, opts.WindowDuration, opts.Burst),
		cache:    expirable.NewLRU[string, []models.InventoryItem](max(opts.CacheSize, 1), nil, opts.CacheTTL),
		iconBase: iconBase,
		logger:   logger.Named("inventory"),
		metrics:  m,
	}
}

// Marketable returns the items of steamID that can be listed, priced from the catalog.
// Items missing from the catalog carry a nil price.
func (s *InventoryService) Marketable(ctx context.Context, steamID string) ([]models.InventoryItem, error) {
	if !ValidSteamID(steamID) {
		return nil, ErrInvalidSteamID
	}

	items, ok := s.cache.Get(steamID)
	if ok {
		s.metrics.InventoryLookup.WithLabelValues("hit").Inc()
	} else {
		s.metrics.InventoryLookup.WithLabelValues("miss").Inc()

		fetched, err := s.load(ctx, steamID)
		if err != nil {
			return nil, err
		}
		items = fetched
		s.cache.Add(steamID, items)
	}

	return s.price(items)
}

// load fetches the inventory and keeps only listable descriptions
func (s *InventoryService) load(ctx context.Context, steamID string) ([]models.InventoryItem, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	inv, err := s.fetcher.FetchInventory(ctx, steamID)
	if err != nil {
		return nil, err
	}

	items := make([]models.InventoryItem, 0, len(inv.Descriptions))
	for _, desc := range inv.Descriptions {
		if !desc.IsListable() {
			continue
		}
		desc.IconURL = s.iconBase + desc.IconURL
		desc.Price = nil
		items = append(items, desc)
	}

	s.logger.Debug("inventory loaded",
		zap.String("steam_id", steamID),
		zap.Int("descriptions", len(inv.Descriptions)),
		zap.Int("listable", len(items)),
	)

	return items, nil
}

// price copies items and attaches the current catalog minimum price
func (s *InventoryService) price(items []models.InventoryItem) ([]models.InventoryItem, error) {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.MarketName)
	}

	skins, err := storage.GetSkinsByMarketNames(s.db, names)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	priced := make([]models.InventoryItem, len(items))
	for i, item := range items {
		if skin, ok := skins[item.MarketName]; ok {
			item.Price = skin.MinPrice
		}
		priced[i] = item
	}

	return priced, nil
}
