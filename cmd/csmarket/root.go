package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shindakun/csmarket/internal/config"
	"github.com/shindakun/csmarket/internal/logger"
)

const defaultConfigPath = "./config.yaml"

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "csmarket",
		Short: "Web front for the CS skin marketplace.",
		Long: `csmarket serves the marketplace login page and hands Steam logins over
to the auth backend. It also keeps a local catalog of Skinport prices and
exposes priced Steam inventories as JSON.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		configPathFromEnv(),
		"path to the configuration file (env CONFIG_PATH)")

	rootCmd.PersistentFlags().String(
		"log-level",
		"",
		"override the configured log level: debug, info, warn, error.")

	rootCmd.AddCommand(serveCmd, pricesCmd, versionCmd)
}

func configPathFromEnv() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := bindFlagsToConfig(flags, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("log-level"); flag != nil && flag.Changed {
		level, _ := flags.GetString("log-level")
		if _, ok := logger.ParseLogLevel(level); !ok {
			return fmt.Errorf("invalid log level %q", level)
		}
		cfg.Log.Level = level
	}

	return nil
}
