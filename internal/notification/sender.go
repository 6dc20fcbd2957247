package notification

import (
	"context"
	"fmt"

	"storefront/internal/config"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message is a single HTML email
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers messages. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail through an SMTP relay
type SMTPSender struct {
	client *mail.Client
}

// NewSMTPSender builds an SMTP client from configuration. No connection is
// opened until the first Send.
func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPSender{client: client}, nil
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}

// LogSender only logs outgoing mail. It stands in when no SMTP host is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, m Message) error {
	s.logger.Info("Mail delivery disabled, dropping message",
		zap.String("from", m.From),
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
	)
	return nil
}

// NewSender picks the SMTP sender when a host is configured and the log-only
// sender otherwise.
func NewSender(cfg config.MailConfig, logger *zap.Logger) (Sender, error) {
	if cfg.Host == "" {
		logger.Warn("SMTP_HOST not set, confirmation emails will only be logged")
		return NewLogSender(logger), nil
	}
	return NewSMTPSender(cfg)
}
