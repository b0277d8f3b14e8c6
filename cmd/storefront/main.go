package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tech-arch1tect/storefront/app"
	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/handlers"
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront account, session and cart API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "storefront %s\n", handlers.Version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, cleanupCmd, catalogCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := app.NewApp().WithAutoConfig().Build()
	if err != nil {
		return err
	}
	return application.Run()
}

// withApp runs fn against a started application without the HTTP server.
func withApp(mutate func(*config.Config), fn func(ctx context.Context, application *app.App) error) error {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if mutate != nil {
		mutate(cfg)
	}

	application, err := app.NewApp().WithConfig(cfg).WithoutServer().Build()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := application.Start(ctx); err != nil {
		return err
	}

	runErr := fn(ctx, application)

	if err := application.Stop(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
