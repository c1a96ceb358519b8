package market

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shindakun/csmarket/internal/metrics"
	"github.com/shindakun/csmarket/internal/models"
	"github.com/shindakun/csmarket/internal/storage"
)

type fakeInventoryFetcher struct {
	countingCalls
	inv *models.Inventory
	err error
}

func (f *fakeInventoryFetcher) FetchInventory(ctx context.Context, steamID string) (*models.Inventory, error) {
	f.hit()
	if f.err != nil {
		return nil, f.err
	}
	// Hand out a fresh copy so callers can't alias the fixture
	inv := *f.inv
	inv.Descriptions = append([]models.InventoryItem(nil), f.inv.Descriptions...)
	return &inv, nil
}

func fixtureInventory(t *testing.T) *models.Inventory {
	t.Helper()

	var inv models.Inventory
	require.NoError(t, json.Unmarshal([]byte(inventoryFixture), &inv))
	return &inv
}

func testInventoryOptions() InventoryOptions {
	return InventoryOptions{
		CacheSize:         8,
		CacheTTL:          time.Minute,
		RequestsPerWindow: 100,
		WindowDuration:    time.Second,
		Burst:             10,
	}
}

func TestValidSteamID(t *testing.T) {
	assert.True(t, ValidSteamID("76561198000000001"))
	assert.False(t, ValidSteamID("7656119800000000"))
	assert.False(t, ValidSteamID("765611980000000012"))
	assert.False(t, ValidSteamID("12345678901234567"))
	assert.False(t, ValidSteamID("7656119800000000a"))
	assert.False(t, ValidSteamID(""))
}

func TestInventoryMarketable(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, storage.UpsertSkins(db, []models.Skin{
		{MarketHashName: "AK-47 | Redline (Field-Tested)", MinPrice: price(1499.99)},
	}))

	m := metrics.New()
	fetcher := &fakeInventoryFetcher{inv: fixtureInventory(t)}
	svc := NewInventoryService(db, fetcher, testInventoryOptions(), testLogger(), m)

	items, err := svc.Marketable(context.Background(), testSteamID)
	require.NoError(t, err)

	require.Len(t, items, 1, "only marketable and tradable items are returned")
	item := items[0]
	assert.Equal(t, "AK-47 | Redline (Field-Tested)", item.MarketName)
	assert.Equal(t, DefaultIconBaseURL+"ak-icon", item.IconURL)
	require.NotNil(t, item.Price)
	assert.InDelta(t, 1499.99, *item.Price, 0.001)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.InventoryLookup.WithLabelValues("miss")))
}

func TestInventoryUnknownSkinHasNilPrice(t *testing.T) {
	db := setupTestDB(t)
	fetcher := &fakeInventoryFetcher{inv: fixtureInventory(t)}
	svc := NewInventoryService(db, fetcher, testInventoryOptions(), testLogger(), metrics.New())

	items, err := svc.Marketable(context.Background(), testSteamID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Price)
}

func TestInventoryCacheServesRepeatLookups(t *testing.T) {
	db := setupTestDB(t)
	m := metrics.New()
	fetcher := &fakeInventoryFetcher{inv: fixtureInventory(t)}
	svc := NewInventoryService(db, fetcher, testInventoryOptions(), testLogger(), m)

	_, err := svc.Marketable(context.Background(), testSteamID)
	require.NoError(t, err)

	// Prices that arrive after the first lookup are still applied to cached items
	require.NoError(t, storage.UpsertSkins(db, []models.Skin{
		{MarketHashName: "AK-47 | Redline (Field-Tested)", MinPrice: price(1200)},
	}))

	items, err := svc.Marketable(context.Background(), testSteamID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Price)
	assert.InDelta(t, 1200.0, *items[0].Price, 0.001)
	assert.Equal(t, DefaultIconBaseURL+"ak-icon", items[0].IconURL, "icon prefix is applied once")

	assert.Equal(t, 1, fetcher.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InventoryLookup.WithLabelValues("hit")))
}

func TestInventoryErrors(t *testing.T) {
	db := setupTestDB(t)

	t.Run("invalid steam id", func(t *testing.T) {
		fetcher := &fakeInventoryFetcher{inv: fixtureInventory(t)}
		svc := NewInventoryService(db, fetcher, testInventoryOptions(), testLogger(), metrics.New())

		_, err := svc.Marketable(context.Background(), "not-a-steam-id")
		assert.ErrorIs(t, err, ErrInvalidSteamID)
		assert.Equal(t, 0, fetcher.count())
	})

	t.Run("private inventory is not cached", func(t *testing.T) {
		fetcher := &fakeInventoryFetcher{err: ErrInventoryPrivate}
		svc := NewInventoryService(db, fetcher, testInventoryOptions(), testLogger(), metrics.New())

		_, err := svc.Marketable(context.Background(), testSteamID)
		assert.ErrorIs(t, err, ErrInventoryPrivate)
		_, err = svc.Marketable(context.Background(), testSteamID)
		assert.ErrorIs(t, err, ErrInventoryPrivate)
		assert.Equal(t, 2, fetcher.count())
	})

	t.Run("cancelled while waiting for the limiter", func(t *testing.T) {
		fetcher := &fakeInventoryFetcher{inv: fixtureInventory(t)}
		opts := testInventoryOptions()
		opts.RequestsPerWindow = 1
		opts.WindowDuration = time.Hour
		opts.Burst = 1
		svc := NewInventoryService(db, fetcher, opts, testLogger(), metrics.New())

		_, err := svc.Marketable(context.Background(), testSteamID)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = svc.Marketable(ctx, "76561198000000002")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, fetcher.count())
	})
}
