package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/services/logging"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

var ErrTemplateNotFound = errors.New("mail template not found")

// Sender delivers a rendered HTML message through a mail relay.
type Sender interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

type Service struct {
	config    *config.MailConfig
	sender    Sender
	templates *template.Template
	logger    *logging.Service
}

func NewService(cfg *config.MailConfig, sender Sender, logger *logging.Service) (*Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("mail sender is required")
	}

	service := &Service{
		config: cfg,
		sender: sender,
		logger: logger,
	}

	if err := service.loadTemplates(); err != nil {
		logger.Error("failed to load mail templates", zap.Error(err))
		return nil, fmt.Errorf("failed to load mail templates: %w", err)
	}

	return service, nil
}

func (s *Service) loadTemplates() error {
	if s.config.TemplatesDir == "" {
		tmpl, err := template.ParseFS(defaultTemplates, "templates/*.html")
		if err != nil {
			return err
		}
		s.templates = tmpl
		return nil
	}

	pattern := filepath.Join(s.config.TemplatesDir, "*.html")
	s.logger.Info("loading mail templates", zap.String("pattern", pattern))

	tmpl, err := template.ParseGlob(pattern)
	if err != nil {
		return err
	}
	s.templates = tmpl
	return nil
}

// SendTemplate renders templateName and hands it to the sender. The send is
// bounded by the configured timeout so a slow relay cannot stall the caller.
func (s *Service) SendTemplate(ctx context.Context, templateName string, to []string, subject string, data map[string]any) error {
	body, err := s.render(templateName, data)
	if err != nil {
		s.logger.Error("failed to render template", zap.Error(err), zap.String("template", templateName))
		return err
	}

	if s.config.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.SendTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.sender.Send(ctx, to, subject, body); err != nil {
		s.logger.Error("failed to send email",
			zap.Error(err),
			zap.String("template", templateName),
			zap.Strings("recipients", to),
			zap.Duration("attempt_duration", time.Since(start)))
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}

	s.logger.Info("email sent",
		zap.String("template", templateName),
		zap.Strings("recipients", to),
		zap.Duration("send_duration", time.Since(start)))
	return nil
}

func (s *Service) render(templateName string, data map[string]any) (string, error) {
	tmpl := s.templates.Lookup(templateName + ".html")
	if tmpl == nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.String(), nil
}

func formatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
