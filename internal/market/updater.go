package market

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shindakun/csmarket/internal/metrics"
	"github.com/shindakun/csmarket/internal/models"
	"github.com/shindakun/csmarket/internal/storage"
)

// PriceFetcher supplies the current price list
type PriceFetcher interface {
	FetchItems(ctx context.Context) ([]models.Skin, error)
}

// Updater keeps the skins table in step with the price feed.
// At most one sync runs at a time.
type Updater struct {
	db          *sql.DB
	fetcher     PriceFetcher
	interval    time.Duration
	syncTimeout time.Duration
	logger      *zap.Logger
	metrics     *metrics.Metrics

	// lifetime bounds syncs started by Trigger; Close cancels it
	lifetime context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewUpdater creates a price updater
func NewUpdater(db *sql.DB, fetcher PriceFetcher, interval time.Duration, logger *zap.Logger, m *metrics.Metrics) *Updater {
	lifetime, cancel := context.WithCancel(context.Background())

	return &Updater{
		db:          db,
		fetcher:     fetcher,
		interval:    interval,
		syncTimeout: 2 * time.Minute,
		logger:      logger.Named("prices"),
		metrics:     m,
		lifetime:    lifetime,
		cancel:      cancel,
	}
}

// Run syncs immediately and then on every interval until ctx is done.
// On return the updater is closed.
func (u *Updater) Run(ctx context.Context) {
	defer u.Close()

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		if _, err := u.Sync(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
			u.logger.Warn("scheduled price sync failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sync performs one synchronous price sync and returns its record
func (u *Updater) Sync(ctx context.Context) (*models.PriceSync, error) {
	record, err := u.begin()
	if err != nil {
		return nil, err
	}
	defer u.release()

	return record, u.execute(ctx, record)
}

// Trigger starts a sync in the background and returns its id
func (u *Updater) Trigger() (string, error) {
	record, err := u.begin()
	if err != nil {
		return "", err
	}

	go func() {
		defer u.release()

		ctx, cancel := context.WithTimeout(u.lifetime, u.syncTimeout)
		defer cancel()

		_ = u.execute(ctx, record)
	}()

	return record.ID, nil
}

// Wait blocks until the sync in flight, if any, has finished
func (u *Updater) Wait() {
	u.wg.Wait()
}

// Close cancels syncs started by Trigger and waits for them to record their result.
// Later syncs are refused with ErrUpdaterClosed.
func (u *Updater) Close() {
	u.mu.Lock()
	u.cancel()
	u.mu.Unlock()

	u.wg.Wait()
}

// begin claims the updater and records a pending sync
func (u *Updater) begin() (*models.PriceSync, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.running {
		return nil, ErrSyncInProgress
	}
	if u.lifetime.Err() != nil {
		return nil, ErrUpdaterClosed
	}

	active, err := storage.GetActivePriceSync(u.db)
	if err != nil {
		return nil, fmt.Errorf("failed to check active syncs: %w", err)
	}
	if active != nil {
		return nil, fmt.Errorf("%w: %s", ErrSyncInProgress, active.ID)
	}

	record := &models.PriceSync{
		ID:        uuid.New().String(),
		Status:    models.PriceSyncStatusPending,
		StartedAt: time.Now(),
	}
	if err := storage.CreatePriceSync(u.db, record); err != nil {
		return nil, fmt.Errorf("failed to create price sync: %w", err)
	}

	u.running = true
	u.wg.Add(1)
	return record, nil
}

func (u *Updater) release() {
	u.mu.Lock()
	u.running = false
	u.mu.Unlock()

	u.wg.Done()
}

// execute fetches and stores prices, always leaving the record finished
func (u *Updater) execute(ctx context.Context, record *models.PriceSync) error {
	log := u.logger.With(zap.String("sync_id", record.ID))
	log.Info("price sync started")

	record.Status = models.PriceSyncStatusRunning
	if err := storage.UpdatePriceSync(u.db, record); err != nil {
		log.Error("failed to mark sync running", zap.Error(err))
	}

	count, err := u.fetchAndStore(ctx)
	record.Finish(count, err)

	if updateErr := storage.UpdatePriceSync(u.db, record); updateErr != nil {
		log.Error("failed to record sync result", zap.Error(updateErr))
	}

	if err != nil {
		u.metrics.PriceSyncs.WithLabelValues(string(models.PriceSyncStatusFailed)).Inc()
		log.Warn("price sync failed", zap.Error(err), zap.Duration("duration", record.Duration()))
		return err
	}

	u.metrics.PriceSyncs.WithLabelValues(string(models.PriceSyncStatusCompleted)).Inc()
	if total, err := storage.CountSkins(u.db); err == nil {
		u.metrics.SkinsTracked.Set(float64(total))
	}

	log.Info("price sync completed",
		zap.Int("items", count),
		zap.Duration("duration", record.Duration()),
	)
	return nil
}

func (u *Updater) fetchAndStore(ctx context.Context) (int, error) {
	skins, err := u.fetcher.FetchItems(ctx)
	if err != nil {
		return 0, err
	}

	if err := storage.UpsertSkins(u.db, skins); err != nil {
		return 0, err
	}

	return len(skins), nil
}
