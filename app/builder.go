package app

import (
	"errors"
	"fmt"

	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/database"
	"github.com/tech-arch1tect/storefront/handlers"
	"github.com/tech-arch1tect/storefront/middleware/ratelimit"
	"github.com/tech-arch1tect/storefront/server"
	"github.com/tech-arch1tect/storefront/services/auth"
	"github.com/tech-arch1tect/storefront/services/billing"
	"github.com/tech-arch1tect/storefront/services/cart"
	"github.com/tech-arch1tect/storefront/services/catalog"
	"github.com/tech-arch1tect/storefront/services/logging"
	"github.com/tech-arch1tect/storefront/services/mail"
	"github.com/tech-arch1tect/storefront/services/users"
	"github.com/tech-arch1tect/storefront/session"
	"go.uber.org/fx"
)

// Models lists every table the storefront owns.
func Models() []any {
	return []any{
		&users.User{},
		&auth.VerificationCode{},
		&session.UserSession{},
		&catalog.Product{},
		&cart.Item{},
	}
}

type AppBuilder struct {
	config    *config.Config
	logger    *logging.Service
	serve     bool
	fxOptions []fx.Option
	errors    []error
}

func NewApp() *AppBuilder {
	return &AppBuilder{serve: true}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithAutoConfig() *AppBuilder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

// WithLogger replaces the logger built from the log config.
func (b *AppBuilder) WithLogger(logger *logging.Service) *AppBuilder {
	b.logger = logger
	return b
}

// WithoutServer builds the service graph without the HTTP server and the
// background cleanup, for one-shot commands.
func (b *AppBuilder) WithoutServer() *AppBuilder {
	b.serve = false
	return b
}

func (b *AppBuilder) WithFxOptions(opts ...fx.Option) *AppBuilder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("configuration errors: %w", errors.Join(b.errors...))
	}
	if b.config == nil {
		b.WithAutoConfig()
		if len(b.errors) > 0 {
			return nil, errors.Join(b.errors...)
		}
	}

	logger := b.logger
	if logger == nil {
		var err error
		logger, err = b.createLogger()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	app := &App{
		config: b.config,
		logger: logger,
	}

	options := b.buildFxOptions(logger)
	options = append(options, fx.Populate(&app.db, &app.auth, &app.tracker, &app.catalog))
	if b.serve {
		options = append(options, fx.Populate(&app.server))
	}

	app.fx = fx.New(options...)
	if err := app.fx.Err(); err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}

	return app, nil
}

func (b *AppBuilder) addError(msg string) {
	b.errors = append(b.errors, errors.New(msg))
}

func (b *AppBuilder) createLogger() (*logging.Service, error) {
	return logging.NewService(logging.Config{
		Level:      logging.LogLevel(b.config.Log.Level),
		Format:     b.config.Log.Format,
		OutputPath: b.config.Log.Output,
	})
}

func (b *AppBuilder) buildFxOptions(logger *logging.Service) []fx.Option {
	options := []fx.Option{
		fx.Supply(b.config),
		fx.Supply(logger),
		fx.Supply(database.WithModels(Models()...)),
		fx.NopLogger,

		database.Module,
		users.Module,
		mail.Module,
		billing.Module,
		session.Module,
		auth.Module,
		cart.Module,
		catalog.Module,

		// auth depends on narrow interfaces; fx matches types exactly
		fx.Provide(
			func(s *mail.Service) auth.MailService { return s },
			func(p billing.Provisioner) auth.Provisioner { return p },
			func(m *session.Manager) auth.SessionStore { return m },
		),
	}

	if b.serve {
		options = append(options,
			server.NewProvider(),
			ratelimit.Module,
			handlers.Module,
			fx.Invoke(func(srv *server.Server, routes handlers.Routes) {
				handlers.RegisterRoutes(srv.Echo(), routes)
			}),
			fx.Provide(NewCleaner),
			fx.Invoke(registerCleaner),
		)
	}

	return append(options, b.fxOptions...)
}

