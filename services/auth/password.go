package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tech-arch1tect/storefront/config"
	"golang.org/x/crypto/bcrypt"
)

// PasswordSymbols is the punctuation accepted towards the symbol requirement.
// '-' and '~' are deliberately absent.
const PasswordSymbols = `!@#$%^&*()_+=[]{};':"\|,.<>/?`

type PasswordPolicy struct {
	MinLength  int
	MinUpper   int
	MinDigits  int
	MinSymbols int
}

func NewPasswordPolicy(cfg *config.AuthConfig) PasswordPolicy {
	return PasswordPolicy{
		MinLength:  cfg.MinLength,
		MinUpper:   cfg.MinUpper,
		MinDigits:  cfg.MinDigits,
		MinSymbols: cfg.MinSymbols,
	}
}

// Check returns ErrWeakPassword wrapped with the list of unmet requirements.
func (p PasswordPolicy) Check(password string) error {
	var upper, digits, symbols int
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune(PasswordSymbols, r):
			symbols++
		}
	}

	var missing []string
	if utf8.RuneCountInString(password) < p.MinLength {
		missing = append(missing, fmt.Sprintf("at least %d characters", p.MinLength))
	}
	if upper < p.MinUpper {
		missing = append(missing, fmt.Sprintf("%d uppercase letter(s)", p.MinUpper))
	}
	if digits < p.MinDigits {
		missing = append(missing, fmt.Sprintf("%d digit(s)", p.MinDigits))
	}
	if symbols < p.MinSymbols {
		missing = append(missing, fmt.Sprintf("%d symbol(s)", p.MinSymbols))
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: requires %s", ErrWeakPassword, strings.Join(missing, ", "))
	}
	return nil
}

type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.DefaultCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h *Hasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
