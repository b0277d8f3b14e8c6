package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type CodeStore interface {
	// Replace removes any code held for the email and stores the new one.
	Replace(ctx context.Context, code *VerificationCode) error
	// FindValid returns nil, nil when no unexpired code matches.
	FindValid(ctx context.Context, email, code string, now time.Time) (*VerificationCode, error)
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type gormCodeStore struct {
	db *gorm.DB
}

func NewCodeStore(db *gorm.DB) CodeStore {
	return &gormCodeStore{db: db}
}

func (s *gormCodeStore) Replace(ctx context.Context, code *VerificationCode) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", code.Email).Delete(&VerificationCode{}).Error; err != nil {
			return fmt.Errorf("failed to delete previous code: %w", err)
		}
		if err := tx.Create(code).Error; err != nil {
			return fmt.Errorf("failed to store code: %w", err)
		}
		return nil
	})
}

func (s *gormCodeStore) FindValid(ctx context.Context, email, code string, now time.Time) (*VerificationCode, error) {
	var record VerificationCode
	err := s.db.WithContext(ctx).
		Where("email = ? AND code = ? AND expires_at > ?", email, code, now).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}
	return &record, nil
}

func (s *gormCodeStore) Delete(ctx context.Context, email string) error {
	if err := s.db.WithContext(ctx).Where("email = ?", email).Delete(&VerificationCode{}).Error; err != nil {
		return fmt.Errorf("failed to delete code: %w", err)
	}
	return nil
}

func (s *gormCodeStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&VerificationCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired codes: %w", result.Error)
	}
	return result.RowsAffected, nil
}
