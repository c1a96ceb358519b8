package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shindakun/csmarket/internal/auth"
	"github.com/shindakun/csmarket/internal/config"
	"github.com/shindakun/csmarket/internal/logger"
	"github.com/shindakun/csmarket/internal/market"
	"github.com/shindakun/csmarket/internal/metrics"
	"github.com/shindakun/csmarket/internal/storage"
	"github.com/shindakun/csmarket/internal/version"
	"github.com/shindakun/csmarket/internal/web"
	"github.com/shindakun/csmarket/internal/web/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web front",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}

		log := logger.FromConfig(cfg.Log.Level, cfg.Log.Format)
		defer func() { _ = log.Sync() }()

		return serve(cmd.Context(), cfg, log)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("starting csmarket", zap.String("version", version.GetFullVersion()))

	// Initialize database
	log.Info("initializing database", zap.String("path", cfg.Storage.DBPath))
	db, err := storage.InitDB(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Syncs left active by a previous server process will never finish
	interrupted, err := storage.FailInterruptedPriceSyncs(db)
	if err != nil {
		return err
	}
	if interrupted > 0 {
		log.Warn("marked interrupted price syncs as failed", zap.Int64("count", interrupted))
	}

	m := metrics.New()
	if total, err := storage.CountSkins(db); err == nil {
		m.SkinsTracked.Set(float64(total))
	}

	login := auth.NewLoginManager(cfg.SteamLoginURL(), log, m)
	log.Info("steam login target", zap.String("url", login.SteamLoginURL()))

	// Background price sync
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var workers sync.WaitGroup
	var updater *market.Updater
	if cfg.Prices.Enabled {
		updater = newUpdater(cfg, db, log, m)
		workers.Add(1)
		go func() {
			defer workers.Done()
			updater.Run(workerCtx)
		}()
		log.Info("price sync enabled", zap.Duration("interval", cfg.Prices.Interval))
	}

	steam := market.NewSteamClient(
		market.NewHTTPClient(cfg.Inventory.RequestTimeout, cfg.Inventory.RetryMax, log),
		cfg.Inventory.SourceURL,
	)
	inventory := market.NewInventoryService(db, steam, market.InventoryOptions{
		IconBaseURL:       cfg.Inventory.IconBaseURL,
		CacheSize:         cfg.Inventory.CacheSize,
		CacheTTL:          cfg.Inventory.CacheTTL,
		RequestsPerWindow: cfg.Inventory.RequestsPerWindow,
		WindowDuration:    cfg.Inventory.WindowDuration,
		Burst:             cfg.Inventory.Burst,
	}, log, m)

	h, err := handlers.New(db, login, updater, inventory, log)
	if err != nil {
		return fmt.Errorf("failed to initialize handlers: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      web.NewRouter(cfg, h, m, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Named("http")),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.GetAddr()), zap.String("base_url", cfg.GetBaseURL()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	stopWorkers()
	workers.Wait()

	log.Info("server exited")
	return nil
}

func newUpdater(cfg *config.Config, db *sql.DB, log *zap.Logger, m *metrics.Metrics) *market.Updater {
	skinport := market.NewSkinportClient(
		market.NewHTTPClient(cfg.Prices.RequestTimeout, cfg.Prices.RetryMax, log),
		cfg.Prices.SourceURL,
		cfg.Prices.AppID,
		cfg.Prices.Currency,
	)
	return market.NewUpdater(db, skinport, cfg.Prices.Interval, log, m)
}
