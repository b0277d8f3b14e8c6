package app

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/server"
	"github.com/tech-arch1tect/storefront/services/auth"
	"github.com/tech-arch1tect/storefront/services/catalog"
	"github.com/tech-arch1tect/storefront/services/logging"
	"github.com/tech-arch1tect/storefront/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	fx      *fx.App
	config  *config.Config
	logger  *logging.Service
	db      *gorm.DB
	server  *server.Server
	auth    *auth.Service
	tracker *session.Tracker
	catalog *catalog.Service
}

func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

func (a *App) Stop(ctx context.Context) error {
	return a.fx.Stop(ctx)
}

// Run starts the application and blocks until a termination signal or a
// fatal server error, then stops it within the configured shutdown timeout.
func (a *App) Run() error {
	if err := a.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	sig := <-a.fx.Done()
	a.logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Stop(ctx); err != nil {
		a.logger.Error("failed to stop application gracefully", zap.Error(err))
		return err
	}
	return nil
}

// Server returns nil when the app was built without the HTTP server.
func (a *App) Server() *echo.Echo {
	if a.server == nil {
		return nil
	}
	return a.server.Echo()
}

func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Catalog() *catalog.Service {
	return a.catalog
}

// Cleanup removes expired verification codes and tracked sessions once.
func (a *App) Cleanup(ctx context.Context) (CleanupResult, error) {
	return cleanup(ctx, a.auth, a.tracker)
}
