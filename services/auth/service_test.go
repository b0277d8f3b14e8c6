package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/storefront/services/logging"
	"github.com/tech-arch1tect/storefront/services/users"
	"github.com/tech-arch1tect/storefront/testutils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type serviceFixture struct {
	service  *Service
	db       *gorm.DB
	mail     *testutils.MockMailService
	billing  *testutils.MockProvisioner
	sessions *testutils.MockSessionStore
	now      time.Time
}

func (f *serviceFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db := testutils.SetupTestDB(t, &VerificationCode{}, &users.User{})
	f := &serviceFixture{
		db:       db,
		mail:     &testutils.MockMailService{},
		billing:  &testutils.MockProvisioner{},
		sessions: &testutils.MockSessionStore{},
		now:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	service, err := NewService(testutils.GetTestConfig(), Deps{
		Codes:    NewCodeStore(db),
		Users:    users.NewRepository(db),
		Mail:     f.mail,
		Billing:  f.billing,
		Sessions: f.sessions,
	}, nil)
	require.NoError(t, err)
	service.SetClock(func() time.Time { return f.now })
	f.service = service

	return f
}

// requestCode issues a code and returns the digits that were mailed.
func (f *serviceFixture) requestCode(t *testing.T, email string) string {
	t.Helper()

	var code string
	call := f.mail.On("SendTemplate", mock.Anything, "verification_code", []string{email}, mock.Anything, mock.Anything).
		Return(nil).
		Once()
	call.Run(func(args mock.Arguments) {
		code = args.Get(4).(map[string]any)["Code"].(string)
	})

	_, err := f.service.RequestCode(context.Background(), email)
	require.NoError(t, err)
	require.NotEmpty(t, code)
	return code
}

func (f *serviceFixture) expectWelcome(email string, err error) {
	f.mail.On("SendTemplate", mock.Anything, "welcome", []string{email}, mock.Anything, mock.Anything).Return(err).Once()
}

func validInput(email, code string) RegisterInput {
	return RegisterInput{
		Email:      email,
		Password:   testutils.TestPasswords.Valid,
		Code:       code,
		FirstName:  "Jane",
		LastName:   "Doe",
		BirthDay:   14,
		BirthMonth: 7,
		BirthYear:  1994,
	}
}

func TestService_RequestCode(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a six digit code expiring in five minutes", func(t *testing.T) {
		f := newServiceFixture(t)
		var mailed map[string]any
		f.mail.On("SendTemplate", ctx, "verification_code", []string{"jane@gmail.com"}, "Your verification code", mock.Anything).
			Return(nil).
			Run(func(args mock.Arguments) { mailed = args.Get(4).(map[string]any) })

		result, err := f.service.RequestCode(ctx, "jane@gmail.com")

		require.NoError(t, err)
		assert.Equal(t, f.now.Add(5*time.Minute), result.ExpiresAt)
		assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{5}$`), mailed["Code"])
		assert.Equal(t, 5, mailed["ExpiryMinutes"])

		var stored VerificationCode
		require.NoError(t, f.db.Where("email = ?", "jane@gmail.com").First(&stored).Error)
		assert.Equal(t, mailed["Code"], stored.Code)
	})

	t.Run("missing email", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.RequestCode(ctx, "  ")

		assert.ErrorIs(t, err, ErrMissingFields)
		f.mail.AssertNumberOfCalls(t, "SendTemplate", 0)
	})

	t.Run("rejects other domains before touching the store", func(t *testing.T) {
		for _, email := range []string{"jane@yahoo.com", "jane@GMAIL.COM", "jane@gmail.com.evil.org", "@gmail.com", "jane@gmailxcom"} {
			f := newServiceFixture(t)

			_, err := f.service.RequestCode(ctx, email)

			assert.ErrorIs(t, err, ErrInvalidEmailDomain, email)
			var count int64
			require.NoError(t, f.db.Model(&VerificationCode{}).Count(&count).Error)
			assert.Zero(t, count)
			f.mail.AssertNumberOfCalls(t, "SendTemplate", 0)
		}
	})

	t.Run("new code invalidates the previous one", func(t *testing.T) {
		f := newServiceFixture(t)

		first := f.requestCode(t, "jane@gmail.com")
		second := f.requestCode(t, "jane@gmail.com")
		for first == second {
			second = f.requestCode(t, "jane@gmail.com")
		}

		assert.ErrorIs(t, f.service.VerifyCode(ctx, "jane@gmail.com", first), ErrInvalidOrExpiredCode)
		assert.NoError(t, f.service.VerifyCode(ctx, "jane@gmail.com", second))
	})

	t.Run("delivery failure is reported but the code stays stored", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mail.On("SendTemplate", mock.Anything, "verification_code", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("relay timeout"))

		_, err := f.service.RequestCode(ctx, "jane@gmail.com")

		assert.ErrorIs(t, err, ErrNotificationDeliveryFailed)
		var count int64
		require.NoError(t, f.db.Model(&VerificationCode{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newServiceFixture(t)
		require.NoError(t, f.db.Migrator().DropTable(&VerificationCode{}))

		_, err := f.service.RequestCode(ctx, "jane@gmail.com")

		assert.ErrorIs(t, err, ErrStoreUnavailable)
		f.mail.AssertNumberOfCalls(t, "SendTemplate", 0)
	})
}

func TestService_VerifyCode(t *testing.T) {
	ctx := context.Background()

	t.Run("does not consume the code", func(t *testing.T) {
		f := newServiceFixture(t)
		code := f.requestCode(t, "jane@gmail.com")

		assert.NoError(t, f.service.VerifyCode(ctx, "jane@gmail.com", code))
		assert.NoError(t, f.service.VerifyCode(ctx, "jane@gmail.com", code))
	})

	t.Run("wrong code", func(t *testing.T) {
		f := newServiceFixture(t)
		code := f.requestCode(t, "jane@gmail.com")
		wrong := "100000"
		if code == wrong {
			wrong = "100001"
		}

		assert.ErrorIs(t, f.service.VerifyCode(ctx, "jane@gmail.com", wrong), ErrInvalidOrExpiredCode)
	})

	t.Run("expired code with matching digits", func(t *testing.T) {
		f := newServiceFixture(t)
		code := f.requestCode(t, "jane@gmail.com")

		f.advance(5*time.Minute + time.Second)

		assert.ErrorIs(t, f.service.VerifyCode(ctx, "jane@gmail.com", code), ErrInvalidOrExpiredCode)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newServiceFixture(t)

		assert.ErrorIs(t, f.service.VerifyCode(ctx, "jane@gmail.com", ""), ErrMissingFields)
		assert.ErrorIs(t, f.service.VerifyCode(ctx, "", "123456"), ErrMissingFields)
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the account and consumes the code", func(t *testing.T) {
		f := newServiceFixture(t)
		code := f.requestCode(t, "jane@gmail.com")
		f.billing.On("CreateCustomer", mock.Anything, "jane@gmail.com").Return("cus_123", nil).Once()
		f.expectWelcome("jane@gmail.com", nil)

		result, err := f.service.Register(ctx, validInput("jane@gmail.com", code))

		require.NoError(t, err)
		assert.NotZero(t, result.AccountID)
		assert.Equal(t, "/login.html", result.Redirect)

		var user users.User
		require.NoError(t, f.db.First(&user, result.AccountID).Error)
		assert.Equal(t, "jane@gmail.com", user.Email)
		assert.NotEqual(t, testutils.TestPasswords.Valid, user.PasswordHash)
		assert.True(t, f.service.hasher.Compare(user.PasswordHash, testutils.TestPasswords.Valid))
		require.NotNil(t, user.BillingCustomerRef)
		assert.Equal(t, "cus_123", *user.BillingCustomerRef)
		assert.Equal(t, 1994, user.BirthYear)

		var codes int64
		require.NoError(t, f.db.Model(&VerificationCode{}).Count(&codes).Error)
		assert.Zero(t, codes)

		f.billing.AssertExpectations(t)
		f.mail.AssertExpectations(t)
	})

	t.Run("second attempt with the same code fails", func(t *testing.T) {
		f := newServiceFixture(t)
		code := f.requestCode(t, "jane@gmail.com")
		f.billing.On("CreateCustomer", mock.Anything, "jane@gmail.com").Return("cus_123", nil).Once()
		f.expectWelcome("jane@gmail.com", nil)

		_, err := f.service.Register(ctx, validInput("jane@gmail.com", code))
		require.NoError(t, err)

		_, err = f.service.Register(ctx, validInput("jane@gmail.com", code))
		assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
		f.billing.AssertNumberOfCalls(t, "CreateCustomer", 1)
	})

	t.Run("duplicate email with a fresh code", func(t *testing.T) {
		f := newServiceFixture(t)
		code := f.requestCode(t, "jane@gmail.com")
		f.billing.On("CreateCustomer", mock.Anything, "jane@gmail.com").Return("cus_123", nil).Once()
		f.expectWelcome("jane@gmail.com", nil)
		_, err := f.service.Register(ctx, validInput("jane@gmail.com", code))
		require.NoError(t, err)

		fresh := f.requestCode(t, "jane@gmail.com")
		_, err = f.service.Register(ctx, validInput("jane@gmail.com", fresh))

		assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)
		f.billing.AssertNumberOfCalls(t, "CreateCustomer", 1)
	})

	t.Run("validation fails before any store access", func(t *testing.T) {
		tests := []struct {
			name    string
			mutate  func(in *RegisterInput)
			wantErr error
		}{
			{name: "missing first name", mutate: func(in *RegisterInput) { in.FirstName = "" }, wantErr: ErrMissingFields},
			{name: "missing birth year", mutate: func(in *RegisterInput) { in.BirthYear = 0 }, wantErr: ErrMissingFields},
			{name: "missing code", mutate: func(in *RegisterInput) { in.Code = " " }, wantErr: ErrMissingFields},
			{name: "other domain", mutate: func(in *RegisterInput) { in.Email = "jane@outlook.com" }, wantErr: ErrInvalidEmailDomain},
			{name: "weak password", mutate: func(in *RegisterInput) { in.Password = testutils.TestPasswords.NoUpper }, wantErr: ErrWeakPassword},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newServiceFixture(t)
				require.NoError(t, f.db.Migrator().DropTable(&VerificationCode{}, &users.User{}))

				in := validInput("jane@gmail.com", "123456")
				tt.mutate(&in)
				_, err := f.service.Register(ctx, in)

				assert.ErrorIs(t, err, tt.wantErr)
				assert.NotErrorIs(t, err, ErrStoreUnavailable)
				f.billing.AssertNumberOfCalls(t, "CreateCustomer", 0)
			})
		}
	})

	t.Run("expired code", func(t *testing.T) {
		f := newServiceFixture(t)
		code := f.requestCode(t, "jane@gmail.com")
		f.advance(6 * time.Minute)

		_, err := f.service.Register(ctx, validInput("jane@gmail.com", code))

		assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
		f.billing.AssertNumberOfCalls(t, "CreateCustomer", 0)
	})

	t.Run("billing failure leaves no account", func(t *testing.T) {
		f := newServiceFixture(t)
		code := f.requestCode(t, "jane@gmail.com")
		f.billing.On("CreateCustomer", mock.Anything, "jane@gmail.com").Return("", errors.New("card_error")).Once()

		_, err := f.service.Register(ctx, validInput("jane@gmail.com", code))

		assert.ErrorIs(t, err, ErrBillingProvisioningFailed)
		var accounts int64
		require.NoError(t, f.db.Model(&users.User{}).Count(&accounts).Error)
		assert.Zero(t, accounts)
		assert.NoError(t, f.service.VerifyCode(ctx, "jane@gmail.com", code))
	})

	t.Run("welcome mail failure does not fail registration", func(t *testing.T) {
		f := newServiceFixture(t)
		code := f.requestCode(t, "jane@gmail.com")
		f.billing.On("CreateCustomer", mock.Anything, "jane@gmail.com").Return("cus_123", nil).Once()
		f.expectWelcome("jane@gmail.com", errors.New("relay down"))

		result, err := f.service.Register(ctx, validInput("jane@gmail.com", code))

		require.NoError(t, err)
		assert.NotZero(t, result.AccountID)
	})

	t.Run("welcome mail timeout does not fail registration", func(t *testing.T) {
		f := newServiceFixture(t)
		code := f.requestCode(t, "jane@gmail.com")
		f.billing.On("CreateCustomer", mock.Anything, "jane@gmail.com").Return("cus_123", nil).Once()
		f.expectWelcome("jane@gmail.com", fmt.Errorf("failed to send welcome email: %w", context.DeadlineExceeded))

		result, err := f.service.Register(ctx, validInput("jane@gmail.com", code))

		require.NoError(t, err)
		assert.NotZero(t, result.AccountID)
		f.mail.AssertExpectations(t)
	})

	t.Run("lost insert race logs the unattached billing customer", func(t *testing.T) {
		f := newServiceFixture(t)
		core, logs := observer.New(zapcore.WarnLevel)
		f.service.logger = logging.NewWithLogger(zap.New(core))
		code := f.requestCode(t, "jane@gmail.com")

		// a concurrent registration commits while the customer is being created
		f.billing.On("CreateCustomer", mock.Anything, "jane@gmail.com").
			Return("cus_orphan", nil).
			Once().
			Run(func(args mock.Arguments) {
				require.NoError(t, f.db.Create(&users.User{Email: "jane@gmail.com", PasswordHash: "x"}).Error)
			})

		_, err := f.service.Register(ctx, validInput("jane@gmail.com", code))

		assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)
		entries := logs.FilterField(zap.String("customer_ref", "cus_orphan")).All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("disabled billing stores no reference", func(t *testing.T) {
		f := newServiceFixture(t)
		code := f.requestCode(t, "jane@gmail.com")
		f.billing.On("CreateCustomer", mock.Anything, "jane@gmail.com").Return("", nil).Once()
		f.expectWelcome("jane@gmail.com", nil)

		result, err := f.service.Register(ctx, validInput("jane@gmail.com", code))
		require.NoError(t, err)

		var user users.User
		require.NoError(t, f.db.First(&user, result.AccountID).Error)
		assert.Nil(t, user.BillingCustomerRef)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, f *serviceFixture) uint {
		code := f.requestCode(t, "jane@gmail.com")
		f.billing.On("CreateCustomer", mock.Anything, "jane@gmail.com").Return("cus_123", nil).Once()
		f.expectWelcome("jane@gmail.com", nil)
		result, err := f.service.Register(ctx, validInput("jane@gmail.com", code))
		require.NoError(t, err)
		return result.AccountID
	}

	t.Run("establishes a session", func(t *testing.T) {
		f := newServiceFixture(t)
		id := register(t, f)
		f.sessions.On("Create", mock.Anything, id).Return("session-token", nil).Once()

		result, err := f.service.Login(ctx, "jane@gmail.com", testutils.TestPasswords.Valid)

		require.NoError(t, err)
		assert.Equal(t, id, result.AccountID)
		assert.Equal(t, "session-token", result.Token)
		assert.Equal(t, "/site.html", result.Redirect)
		f.sessions.AssertExpectations(t)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		f := newServiceFixture(t)
		register(t, f)

		_, wrongPassword := f.service.Login(ctx, "jane@gmail.com", "Wrong123!")
		_, unknownEmail := f.service.Login(ctx, "nobody@gmail.com", testutils.TestPasswords.Valid)

		assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
		f.sessions.AssertNumberOfCalls(t, "Create", 0)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.Login(ctx, "jane@gmail.com", "")
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("session store failure", func(t *testing.T) {
		f := newServiceFixture(t)
		id := register(t, f)
		f.sessions.On("Create", mock.Anything, id).Return("", errors.New("store down")).Once()

		_, err := f.service.Login(ctx, "jane@gmail.com", testutils.TestPasswords.Valid)

		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestService_CurrentAccount(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	user := &users.User{Email: "jane@gmail.com", PasswordHash: "x", FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, f.db.Create(user).Error)

	t.Run("found", func(t *testing.T) {
		account, err := f.service.CurrentAccount(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "jane@gmail.com", account.Email)
	})

	t.Run("no session", func(t *testing.T) {
		_, err := f.service.CurrentAccount(ctx, 0)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("account vanished", func(t *testing.T) {
		_, err := f.service.CurrentAccount(ctx, user.ID+100)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestService_CleanupExpiredCodes(t *testing.T) {
	f := newServiceFixture(t)
	f.requestCode(t, "old@gmail.com")
	f.advance(10 * time.Minute)
	f.requestCode(t, "new@gmail.com")

	removed, err := f.service.CleanupExpiredCodes(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}
