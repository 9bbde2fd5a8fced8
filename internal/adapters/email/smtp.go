package email

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

type smtpMailer struct {
	dialer      *gomail.Dialer
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func newSMTPMailer(config MailerConfig, logger *slog.Logger) *smtpMailer {
	port := config.SMTP.Port
	if port == 0 {
		port = 587
	}
	return &smtpMailer{
		dialer:      gomail.NewDialer(config.SMTP.Host, port, config.SMTP.Username, config.SMTP.Password),
		fromAddress: config.FromAddress,
		fromName:    config.FromName,
		logger:      logger,
	}
}

func (m *smtpMailer) Provider() string { return ProviderSMTP }

func (m *smtpMailer) message(to, subject, html, text string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromAddress, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	switch {
	case text != "" && html != "":
		msg.SetBody("text/plain", text)
		msg.AddAlternative("text/html", html)
	case html != "":
		msg.SetBody("text/html", html)
	default:
		msg.SetBody("text/plain", text)
	}
	return msg
}

// Send delivers through the relay. gomail has no context support, so ctx is only
// checked before dialing; the caller bounds the overall wait.
func (m *smtpMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(m.message(to, subject, html, text))
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email via SMTP: %w", err)
		}
		m.logger.Debug("email sent via SMTP", "to", to)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

// Probe dials and authenticates against the relay, then hangs up.
func (m *smtpMailer) Probe(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		conn, err := m.dialer.Dial()
		if err != nil {
			done <- err
			return
		}
		done <- conn.Close()
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp dial: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp dial: %w", ctx.Err())
	}
}
