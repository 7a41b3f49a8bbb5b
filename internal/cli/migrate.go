package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

var reindex bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Runs the schema migration for every storefront table.

With --reindex the active catalog is also pushed to the Elasticsearch
index named by ES_INDEX.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&reindex, "reindex", false, "rebuild the product search index after migrating")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, logger, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = pkgdb.Close(db) }()

	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("migration_done")

	if !reindex {
		return nil
	}
	if cfg.ESURL == "" {
		return fmt.Errorf("--reindex needs ES_URL")
	}
	idx, err := search.New(ctx, search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
	if err != nil {
		return err
	}
	n, err := reindexCatalog(ctx, &repo.GormRepo{DB: db}, idx)
	if err != nil {
		return err
	}
	logger.Info("reindex_done", "products", n)
	return nil
}

func reindexCatalog(ctx context.Context, r *repo.GormRepo, idx *search.Client) (int, error) {
	_, products, err := r.ListProducts(ctx, repo.ProductFilter{})
	if err != nil {
		return 0, err
	}
	for i := range products {
		if err := idx.IndexProduct(ctx, &products[i]); err != nil {
			return i, fmt.Errorf("index product %d: %w", products[i].ID, err)
		}
	}
	return len(products), nil
}
