package database

import (
	"fmt"
	"time"

	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/services/logging"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type ModelsOption struct {
	models []any
}

func WithModels(models ...any) *ModelsOption {
	return &ModelsOption{models: models}
}

func (m *ModelsOption) Models() []any {
	if m == nil {
		return nil
	}
	return m.models
}

// ProvideDatabase opens the configured driver with error translation enabled,
// so unique-index violations surface as gorm.ErrDuplicatedKey on every driver.
func ProvideDatabase(cfg config.DatabaseConfig, modelsOpt *ModelsOption, logger *logging.Service) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		logger.Error("unsupported database driver", zap.String("driver", cfg.Driver))
		return nil, fmt.Errorf("unsupported database driver: %s (supported: sqlite, postgres, mysql)", cfg.Driver)
	}

	logger.Info("connecting to database", zap.String("driver", cfg.Driver))

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err), zap.String("driver", cfg.Driver))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// an in-memory database exists per connection; pin the pool to one
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.AutoMigrate && len(modelsOpt.Models()) > 0 {
		if err := Migrate(db, logger, modelsOpt.Models()...); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func Migrate(db *gorm.DB, logger *logging.Service, models ...any) error {
	logger.Info("running auto-migration", zap.Int("models", len(models)))

	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("auto-migration failed", zap.Error(err))
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	return nil
}
