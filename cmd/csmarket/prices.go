package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shindakun/csmarket/internal/exporter"
	"github.com/shindakun/csmarket/internal/logger"
	"github.com/shindakun/csmarket/internal/metrics"
	"github.com/shindakun/csmarket/internal/storage"
)

var (
	pricesCmd = &cobra.Command{
		Use:   "prices",
		Short: "Price catalog commands",
	}

	pricesSyncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Fetch the price feed once and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			log := logger.FromConfig(cfg.Log.Level, cfg.Log.Format)
			defer func() { _ = log.Sync() }()

			db, err := storage.InitDB(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			record, err := newUpdater(cfg, db, log, metrics.New()).Sync(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "synced %d items in %s\n", record.ItemCount, record.Duration().Round(time.Millisecond))
			return nil
		},
	}

	pricesStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the latest price sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			db, err := storage.InitDB(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			latest, err := storage.GetLatestPriceSync(db)
			if err != nil {
				return err
			}
			total, err := storage.CountSkins(db)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "skins: %d\n", total)
			if latest == nil {
				fmt.Fprintln(out, "no syncs yet")
				return nil
			}
			fmt.Fprintf(out, "last sync: %s %s, %d items\n", latest.ID, latest.Status, latest.ItemCount)
			if latest.ErrorMessage != "" {
				fmt.Fprintf(out, "error: %s\n", latest.ErrorMessage)
			}
			return nil
		},
	}

	pricesExportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the price catalog to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("format")
			format, err := exporter.ParseFormat(name)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			db, err := storage.InitDB(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			skins, err := storage.ListSkins(db)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" || output == "-" {
				return exporter.Write(cmd.OutOrStdout(), format, skins)
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer file.Close()

			if err := exporter.Write(file, format, skins); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d skins to %s\n", len(skins), output)
			return file.Close()
		},
	}
)

func init() {
	pricesExportCmd.Flags().StringP("format", "f", string(exporter.FormatCSV), "export format: csv or json.")
	pricesExportCmd.Flags().StringP("output", "o", "", "file to write (default stdout).")

	pricesCmd.AddCommand(pricesSyncCmd, pricesStatusCmd, pricesExportCmd)
}
