package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tech-arch1tect/storefront/app"
	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/database"
	"github.com/tech-arch1tect/storefront/services/catalog"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		noAutoMigrate := func(cfg *config.Config) { cfg.Database.AutoMigrate = false }

		return withApp(noAutoMigrate, func(ctx context.Context, application *app.App) error {
			if err := database.Migrate(application.DB().WithContext(ctx), application.Logger(), app.Models()...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		})
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired verification codes and sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(nil, func(ctx context.Context, application *app.App) error {
			result, err := application.Cleanup(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d codes and %d sessions\n", result.Codes, result.Sessions)
			return nil
		})
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the product catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Insert or update products from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		products, err := catalog.DecodeProducts(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		return withApp(nil, func(ctx context.Context, application *app.App) error {
			if err := application.Catalog().Upsert(ctx, products); err != nil {
				return err
			}
			application.Logger().Info("catalog imported", zap.Int("products", len(products)), zap.String("file", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d products\n", len(products))
			return nil
		})
	},
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
}
