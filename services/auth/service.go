package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/services/logging"
	"github.com/tech-arch1tect/storefront/services/users"
	"go.uber.org/zap"
)

const (
	codeTemplate    = "verification_code"
	welcomeTemplate = "welcome"
)

type MailService interface {
	SendTemplate(ctx context.Context, templateName string, to []string, subject string, data map[string]any) error
}

type Provisioner interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
}

type SessionStore interface {
	Create(ctx context.Context, accountID uint) (string, error)
}

type Service struct {
	config      *config.Config
	codes       CodeStore
	users       users.Repository
	mail        MailService
	billing     Provisioner
	sessions    SessionStore
	policy      PasswordPolicy
	hasher      *Hasher
	emailPolicy *regexp.Regexp
	dummyHash   string
	logger      *logging.Service
	now         func() time.Time
}

type Deps struct {
	Codes    CodeStore
	Users    users.Repository
	Mail     MailService
	Billing  Provisioner
	Sessions SessionStore
}

func NewService(cfg *config.Config, deps Deps, logger *logging.Service) (*Service, error) {
	hasher := NewHasher(cfg.Auth.BcryptCost)

	// compared against when the email is unknown so both login failures cost one bcrypt round
	dummyHash, err := hasher.Hash("storefront-unknown-account")
	if err != nil {
		return nil, err
	}

	return &Service{
		config:      cfg,
		codes:       deps.Codes,
		users:       deps.Users,
		mail:        deps.Mail,
		billing:     deps.Billing,
		sessions:    deps.Sessions,
		policy:      NewPasswordPolicy(&cfg.Auth),
		hasher:      hasher,
		emailPolicy: regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@` + regexp.QuoteMeta(cfg.Auth.AllowedEmailDomain) + `$`),
		dummyHash:   dummyHash,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// SetClock replaces the time source. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) ValidateEmail(email string) error {
	if !s.emailPolicy.MatchString(email) {
		return ErrInvalidEmailDomain
	}
	return nil
}

func (s *Service) ValidatePassword(password string) error {
	return s.policy.Check(password)
}

type CodeResult struct {
	Email     string
	ExpiresAt time.Time
}

// RequestCode issues a fresh code for email, replacing any earlier one, and
// mails it. A delivery failure is reported even though the code stays stored.
func (s *Service) RequestCode(ctx context.Context, email string) (*CodeResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrMissingFields
	}
	if err := s.ValidateEmail(email); err != nil {
		s.logger.Warn("verification code refused: email domain", zap.String("email", email))
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	issuedAt := s.now()
	record := &VerificationCode{
		Email:     email,
		Code:      code,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.config.Auth.CodeExpiry),
	}

	if err := s.codes.Replace(ctx, record); err != nil {
		s.logger.Error("failed to store verification code", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	data := map[string]any{
		"AppName":       s.config.App.Name,
		"Email":         email,
		"Code":          code,
		"ExpiryMinutes": int(s.config.Auth.CodeExpiry.Minutes()),
	}
	if err := s.mail.SendTemplate(ctx, codeTemplate, []string{email}, "Your verification code", data); err != nil {
		s.logger.Error("failed to deliver verification code", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("%w: %w", ErrNotificationDeliveryFailed, err)
	}

	s.logger.Info("verification code issued",
		zap.String("email", email),
		zap.Time("expires_at", record.ExpiresAt))

	return &CodeResult{Email: email, ExpiresAt: record.ExpiresAt}, nil
}

// VerifyCode reports whether code is currently valid for email without
// consuming it.
func (s *Service) VerifyCode(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return ErrMissingFields
	}
	if err := s.ValidateEmail(email); err != nil {
		return err
	}
	return s.checkCode(ctx, email, code)
}

func (s *Service) checkCode(ctx context.Context, email, code string) error {
	record, err := s.codes.FindValid(ctx, email, code, s.now())
	if err != nil {
		s.logger.Error("failed to look up verification code", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if record == nil {
		s.logger.Warn("invalid or expired verification code", zap.String("email", email))
		return ErrInvalidOrExpiredCode
	}
	return nil
}

type RegisterInput struct {
	Email      string
	Password   string
	Code       string
	FirstName  string
	LastName   string
	BirthDay   int
	BirthMonth int
	BirthYear  int
}

func (in RegisterInput) complete() bool {
	return in.Email != "" && in.Password != "" && in.Code != "" &&
		in.FirstName != "" && in.LastName != "" &&
		in.BirthDay != 0 && in.BirthMonth != 0 && in.BirthYear != 0
}

type RegisterResult struct {
	AccountID uint
	Redirect  string
}

// Register consumes a verification code and creates the account. Steps run
// in a fixed order and each one gates the next; billing is provisioned
// before the account row is written.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Code = strings.TrimSpace(in.Code)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if !in.complete() {
		return nil, ErrMissingFields
	}
	if err := s.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	if err := s.checkCode(ctx, in.Email, in.Code); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		s.logger.Warn("registration refused: email already registered", zap.String("email", in.Email))
		return nil, ErrEmailAlreadyRegistered
	case !errors.Is(err, users.ErrNotFound):
		s.logger.Error("failed to check existing account", zap.Error(err), zap.String("email", in.Email))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	customerRef, err := s.billing.CreateCustomer(ctx, in.Email)
	if err != nil {
		s.logger.Error("failed to provision billing customer", zap.Error(err), zap.String("email", in.Email))
		return nil, fmt.Errorf("%w: %w", ErrBillingProvisioningFailed, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return nil, err
	}

	user := &users.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		BirthDay:     in.BirthDay,
		BirthMonth:   in.BirthMonth,
		BirthYear:    in.BirthYear,
	}
	if customerRef != "" {
		user.BillingCustomerRef = &customerRef
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			s.logger.Warn("registration lost a race on email uniqueness; billing customer left unattached",
				zap.String("email", in.Email),
				zap.String("customer_ref", customerRef))
			return nil, ErrEmailAlreadyRegistered
		}
		s.logger.Error("failed to persist account", zap.Error(err), zap.String("email", in.Email))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if err := s.codes.Delete(ctx, in.Email); err != nil {
		s.logger.Warn("failed to delete consumed verification code", zap.Error(err), zap.String("email", in.Email))
	}

	welcome := map[string]any{
		"AppName":   s.config.App.Name,
		"FirstName": in.FirstName,
		"AppURL":    s.config.App.URL,
	}
	if err := s.mail.SendTemplate(ctx, welcomeTemplate, []string{in.Email}, "Welcome to "+s.config.App.Name, welcome); err != nil {
		s.logger.Warn("failed to send welcome email", zap.Error(err), zap.Uint("user_id", user.ID))
	}

	s.logger.Info("account registered", zap.Uint("user_id", user.ID), zap.String("email", in.Email))

	return &RegisterResult{AccountID: user.ID, Redirect: s.config.App.LoginPath}, nil
}

type LoginResult struct {
	AccountID uint
	Token     string
	Redirect  string
}

// Login answers unknown emails and wrong passwords with the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			s.logger.Error("failed to look up account", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		s.hasher.Compare(s.dummyHash, password)
		s.logger.Warn("login failed", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		s.logger.Warn("login failed", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to establish session", zap.Error(err), zap.Uint("user_id", user.ID))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	s.logger.Info("login succeeded", zap.Uint("user_id", user.ID))

	return &LoginResult{AccountID: user.ID, Token: token, Redirect: s.config.App.HomePath}, nil
}

func (s *Service) CurrentAccount(ctx context.Context, accountID uint) (*users.User, error) {
	if accountID == 0 {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("failed to load account", zap.Error(err), zap.Uint("user_id", accountID))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return user, nil
}

func (s *Service) CleanupExpiredCodes(ctx context.Context) (int64, error) {
	removed, err := s.codes.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to clean up expired verification codes", zap.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	s.logger.Info("expired verification codes cleaned up", zap.Int64("codes_removed", removed))
	return removed, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
