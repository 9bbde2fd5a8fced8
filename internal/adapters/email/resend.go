package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type resendMailer struct {
	client      *resend.Client
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func newResendMailer(config MailerConfig, logger *slog.Logger) *resendMailer {
	return &resendMailer{
		client:      resend.NewClient(config.Resend.APIKey),
		fromAddress: config.FromAddress,
		fromName:    config.FromName,
		logger:      logger,
	}
}

func (m *resendMailer) Provider() string { return ProviderResend }

// Send calls the Resend API once. Rate limit responses are reported, not retried here.
func (m *resendMailer) Send(ctx context.Context, to, subject, html, text string) error {
	params := &resend.SendEmailRequest{
		From:    formatSource(m.fromAddress, m.fromName),
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			m.logger.Warn("resend rate limit exceeded",
				"limit", rateLimitErr.Limit,
				"remaining", rateLimitErr.Remaining,
				"reset", rateLimitErr.Reset,
			)
			return fmt.Errorf("email rate limit exceeded (resets in %s seconds): %w", rateLimitErr.Reset, err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}
	m.logger.Debug("email sent via Resend", "email_id", sent.Id, "to", to)
	return nil
}
