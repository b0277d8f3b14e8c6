package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Manager struct {
	*scs.SessionManager
	config config.SessionConfig
	logger *logging.Service
}

func NewManager(cfg config.SessionConfig, store scs.Store, logger *logging.Service) *Manager {
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.IdleTimeout = cfg.IdleTimeout
	sessionManager.Lifetime = cfg.Lifetime
	sessionManager.Cookie.Name = cfg.Name
	sessionManager.Cookie.Path = cfg.Path
	sessionManager.Cookie.Domain = cfg.Domain
	sessionManager.Cookie.Secure = cfg.Secure
	sessionManager.Cookie.HttpOnly = cfg.HttpOnly
	sessionManager.Cookie.Persist = true

	switch cfg.SameSite {
	case "strict":
		sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	case "none":
		sessionManager.Cookie.SameSite = http.SameSiteNoneMode
	default:
		sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	}

	return &Manager{
		SessionManager: sessionManager,
		config:         cfg,
		logger:         logger,
	}
}

func ProvideSessionManager(lc fx.Lifecycle, cfg *config.Config, db *gorm.DB, logger *logging.Service) (*Manager, error) {
	sessionLogger := logger.Named("session")

	var store scs.Store
	switch cfg.Session.Store {
	case "memory":
		store = NewMemoryStore(cfg.Session.CleanupInterval)
	case "database":
		dbStore, err := NewDatabaseStore(db, cfg.Session.CleanupInterval)
		if err != nil {
			return nil, fmt.Errorf("failed to create database session store: %w", err)
		}
		store = dbStore
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Session.Store)
	}

	sessionLogger.Info("session store ready",
		zap.String("store", cfg.Session.Store),
		zap.Duration("idle_timeout", cfg.Session.IdleTimeout),
		zap.Duration("lifetime", cfg.Session.Lifetime))

	if stopper, ok := store.(cleanupStopper); ok {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				stopper.StopCleanup()
				return nil
			},
		})
	}

	return NewManager(cfg.Session, store, sessionLogger), nil
}

func ProvideTracker(db *gorm.DB, manager *Manager, logger *logging.Service) *Tracker {
	return NewTracker(db, manager, logger.Named("session"))
}

var Module = fx.Module("session",
	fx.Provide(ProvideSessionManager),
	fx.Provide(ProvideTracker),
)
