package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/tech-arch1tect/storefront/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type AddInput struct {
	Ref      string
	Color    string
	Price    int64
	Quantity int
	Image    string
}

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{db: db, logger: logger}
}

func (s *Service) List(ctx context.Context, userID uint) ([]Item, error) {
	var items []Item
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return items, nil
}

// Add merges into an existing line for the same product and color, or
// inserts a new one. merged reports which happened.
func (s *Service) Add(ctx context.Context, userID uint, in AddInput) (item *Item, merged bool, err error) {
	if in.Quantity < 1 {
		return nil, false, ErrInvalidQuantity
	}

	item, merged, err = s.addLine(ctx, userID, in)
	// a concurrent add inserted the same line first; the second pass merges into it
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		item, merged, err = s.addLine(ctx, userID, in)
	}
	if err != nil {
		s.logger.Error("failed to add cart item", zap.Error(err), zap.Uint("user_id", userID), zap.String("ref", in.Ref))
		return nil, false, fmt.Errorf("failed to add cart item: %w", err)
	}

	return item, merged, nil
}

func (s *Service) addLine(ctx context.Context, userID uint, in AddInput) (item *Item, merged bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Item
		findErr := tx.Where("user_id = ? AND ref = ? AND color = ?", userID, in.Ref, in.Color).First(&existing).Error
		switch {
		case findErr == nil:
			if err := s.increment(tx, &existing, in.Quantity); err != nil {
				return err
			}
			item, merged = &existing, true
			return nil
		case !errors.Is(findErr, gorm.ErrRecordNotFound):
			return findErr
		}

		created := &Item{
			UserID:   userID,
			Ref:      in.Ref,
			Color:    in.Color,
			Price:    in.Price,
			Quantity: in.Quantity,
			Image:    in.Image,
		}
		if err := tx.Create(created).Error; err != nil {
			return err
		}
		item = created
		return nil
	})

	return item, merged, err
}

func (s *Service) increment(tx *gorm.DB, existing *Item, quantity int) error {
	if err := tx.Model(existing).Update("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
		return err
	}
	return tx.First(existing, existing.ID).Error
}

func (s *Service) Update(ctx context.Context, userID, itemID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	result := s.db.WithContext(ctx).Model(&Item{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if result.Error != nil {
		s.logger.Error("failed to update cart item", zap.Error(result.Error), zap.Uint("item_id", itemID))
		return fmt.Errorf("failed to update cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *Service) Remove(ctx context.Context, userID, itemID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&Item{})
	if result.Error != nil {
		s.logger.Error("failed to remove cart item", zap.Error(result.Error), zap.Uint("item_id", itemID))
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}
