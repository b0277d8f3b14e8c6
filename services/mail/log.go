package mail

import (
	"context"

	"github.com/tech-arch1tect/storefront/services/logging"
	"go.uber.org/zap"
)

// LogSender writes messages to the log instead of delivering them. Meant for
// local development where no relay is reachable.
type LogSender struct {
	logger *logging.Service
}

func NewLogSender(logger *logging.Service) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("mail delivery skipped (log driver)",
		zap.Strings("recipients", to),
		zap.String("subject", subject))
	s.logger.Debug("mail body", zap.String("html", htmlBody))
	return nil
}
