package cart

import (
	"github.com/tech-arch1tect/storefront/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideCartService(db *gorm.DB, logger *logging.Service) *Service {
	return NewService(db, logger.Named("cart"))
}

var Module = fx.Options(
	fx.Provide(ProvideCartService),
)
