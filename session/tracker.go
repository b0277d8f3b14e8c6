package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mileusna/useragent"
	"github.com/tech-arch1tect/storefront/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

type Tracker struct {
	db      *gorm.DB
	manager *Manager
	logger  *logging.Service
	now     func() time.Time
}

func NewTracker(db *gorm.DB, manager *Manager, logger *logging.Service) *Tracker {
	return &Tracker{
		db:      db,
		manager: manager,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (t *Tracker) Track(ctx context.Context, userID uint, token, ipAddress, userAgent string) error {
	now := t.now()
	record := UserSession{
		UserID:    userID,
		Token:     token,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: now,
		LastUsed:  now,
		ExpiresAt: t.manager.Expiry(now),
	}

	if err := t.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to track session: %w", err)
	}
	return nil
}

// Touch moves the idle expiry forward, never past the absolute lifetime.
func (t *Tracker) Touch(ctx context.Context, token string) error {
	now := t.now()
	var record UserSession
	if err := t.db.WithContext(ctx).Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load tracked session: %w", err)
	}

	expiresAt := now.Add(t.manager.config.IdleTimeout)
	if limit := record.CreatedAt.Add(t.manager.config.Lifetime); limit.Before(expiresAt) {
		expiresAt = limit
	}

	return t.db.WithContext(ctx).Model(&record).Updates(map[string]any{
		"last_used":  now,
		"expires_at": expiresAt,
	}).Error
}

func (t *Tracker) List(ctx context.Context, userID uint, currentToken string) ([]SessionInfo, error) {
	var records []UserSession
	err := t.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, t.now()).
		Order("last_used DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(records))
	for _, record := range records {
		ua := useragent.Parse(record.UserAgent)
		sessions = append(sessions, SessionInfo{
			ID:         record.ID,
			Browser:    browserLabel(ua),
			OS:         osLabel(ua),
			DeviceType: deviceType(ua),
			IPAddress:  record.IPAddress,
			Location:   locationLabel(record.IPAddress),
			Current:    record.Token == currentToken,
			CreatedAt:  record.CreatedAt,
			LastUsed:   record.LastUsed,
			ExpiresAt:  record.ExpiresAt,
		})
	}
	return sessions, nil
}

// Revoke ends another session of the same account, removing both the
// tracking row and the session data.
func (t *Tracker) Revoke(ctx context.Context, userID, sessionID uint) error {
	var record UserSession
	err := t.db.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	if err := t.manager.Store.Delete(record.Token); err != nil {
		return fmt.Errorf("failed to delete session data: %w", err)
	}

	if err := t.db.WithContext(ctx).Delete(&record).Error; err != nil {
		return fmt.Errorf("failed to delete tracked session: %w", err)
	}

	t.logger.Info("session revoked", zap.Uint("user_id", userID), zap.Uint("session_id", sessionID))
	return nil
}

func (t *Tracker) Remove(ctx context.Context, token string) error {
	if err := t.db.WithContext(ctx).Where("token = ?", token).Delete(&UserSession{}).Error; err != nil {
		return fmt.Errorf("failed to remove tracked session: %w", err)
	}
	return nil
}

func (t *Tracker) CleanupExpired(ctx context.Context) (int64, error) {
	result := t.db.WithContext(ctx).Where("expires_at <= ?", t.now()).Delete(&UserSession{})
	if result.Error != nil {
		t.logger.Error("failed to clean up expired sessions", zap.Error(result.Error))
		return 0, fmt.Errorf("failed to clean up expired sessions: %w", result.Error)
	}

	t.logger.Info("expired sessions cleaned up", zap.Int64("sessions_removed", result.RowsAffected))
	return result.RowsAffected, nil
}

func browserLabel(ua useragent.UserAgent) string {
	switch {
	case ua.Name == "":
		return "Unknown Browser"
	case ua.Version != "":
		return ua.Name + " " + ua.Version
	default:
		return ua.Name
	}
}

func osLabel(ua useragent.UserAgent) string {
	switch {
	case ua.OS == "":
		return "Unknown OS"
	case ua.OSVersion != "":
		return ua.OS + " " + ua.OSVersion
	default:
		return ua.OS
	}
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "Bot"
	case ua.Mobile:
		return "Mobile"
	case ua.Tablet:
		return "Tablet"
	case ua.Desktop:
		return "Desktop"
	default:
		return "Unknown"
	}
}

func locationLabel(ipAddress string) string {
	if ipAddress == "" || ipAddress == "127.0.0.1" || ipAddress == "::1" {
		return "Local"
	}
	return "Unknown Location"
}
