// Package cli holds the storefront command tree.
package cli

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	storecfg "github.com/Skotchmaster/storefront/internal/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront API: catalog, cart, checkout and order back-office",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("warning: could not load %s: %v", envFile, err)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration, installs the default logger and opens the database.
func bootstrap(ctx context.Context) (storecfg.ServiceConfig, *slog.Logger, *gorm.DB, error) {
	cfg, err := storecfg.Load()
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireDB(); err != nil {
		return cfg, nil, nil, err
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := pkgdb.Open(openCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return cfg, logger, nil, fmt.Errorf("db open: %w", err)
	}
	return cfg, logger, db, nil
}
