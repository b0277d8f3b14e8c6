package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/services/auth"
	"github.com/tech-arch1tect/storefront/services/logging"
	"github.com/tech-arch1tect/storefront/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type CleanupResult struct {
	Codes    int64
	Sessions int64
}

func cleanup(ctx context.Context, authService *auth.Service, tracker *session.Tracker) (CleanupResult, error) {
	var result CleanupResult

	codes, codesErr := authService.CleanupExpiredCodes(ctx)
	result.Codes = codes

	sessions, sessionsErr := tracker.CleanupExpired(ctx)
	result.Sessions = sessions

	return result, errors.Join(codesErr, sessionsErr)
}

// Cleaner periodically deletes expired rows. Expiry is still checked on
// every read, so a missed run only leaves dead rows behind.
type Cleaner struct {
	auth     *auth.Service
	tracker  *session.Tracker
	logger   *logging.Service
	interval time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewCleaner(cfg *config.Config, authService *auth.Service, tracker *session.Tracker, logger *logging.Service) *Cleaner {
	return &Cleaner{
		auth:     authService,
		tracker:  tracker,
		logger:   logger.Named("cleanup"),
		interval: cfg.Session.CleanupInterval,
	}
}

func (c *Cleaner) Start() {
	if c.interval <= 0 {
		return
	}

	c.stop = make(chan struct{})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.RunOnce(context.Background())
			case <-c.stop:
				return
			}
		}
	}()
}

func (c *Cleaner) Stop() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	c.wg.Wait()
	c.stop = nil
}

func (c *Cleaner) RunOnce(ctx context.Context) CleanupResult {
	result, err := cleanup(ctx, c.auth, c.tracker)
	if err != nil {
		c.logger.Error("cleanup run failed", zap.Error(err))
	}
	c.logger.Debug("cleanup run finished",
		zap.Int64("codes_removed", result.Codes),
		zap.Int64("sessions_removed", result.Sessions))
	return result
}

func registerCleaner(lc fx.Lifecycle, cleaner *Cleaner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			cleaner.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cleaner.Stop()
			return nil
		},
	})
}
