package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const UserIDKey = "_user_id"

var ErrNoSessionContext = errors.New("no session loaded in context")

// Create binds accountID to the session carried by ctx and commits it. The
// token is rotated first so a pre-login token can never become authenticated.
// ctx must come from a request wrapped by Middleware, or from Load.
func (m *Manager) Create(ctx context.Context, accountID uint) (token string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrNoSessionContext, r)
		}
	}()

	if err := m.RenewToken(ctx); err != nil {
		return "", fmt.Errorf("failed to renew session token: %w", err)
	}
	m.Put(ctx, UserIDKey, accountID)

	token, _, err = m.Commit(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to commit session: %w", err)
	}

	m.logger.Debug("session established", zap.Uint("user_id", accountID))
	return token, nil
}

// Resolve looks a token up in the store. Unknown and expired tokens resolve
// to ok == false.
func (m *Manager) Resolve(ctx context.Context, token string) (accountID uint, ok bool, err error) {
	loaded, err := m.Load(ctx, token)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load session: %w", err)
	}

	accountID = convertToUint(m.Get(loaded, UserIDKey))
	return accountID, accountID != 0, nil
}

func (m *Manager) AccountID(ctx context.Context) uint {
	return convertToUint(m.Get(ctx, UserIDKey))
}

// Expiry is when an idle session created now would lapse.
func (m *Manager) Expiry(now time.Time) time.Time {
	idle := now.Add(m.config.IdleTimeout)
	if capped := now.Add(m.config.Lifetime); capped.Before(idle) {
		return capped
	}
	return idle
}

func convertToUint(value any) uint {
	switch v := value.(type) {
	case uint:
		return v
	case int:
		if v > 0 {
			return uint(v)
		}
	case int64:
		if v > 0 {
			return uint(v)
		}
	case uint64:
		return uint(v)
	case float64:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}
