package services

import (
	"context"
	"fmt"

	"eventregistration/internal/domain"
)

// EmailService turns template data into notification jobs and hands jobs to the mailer.
type EmailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) *EmailService {
	return &EmailService{mailer: mailer, renderer: renderer}
}

// Compose renders templateName with data into a job addressed to to.
func (s *EmailService) Compose(kind domain.NotificationKind, templateName, to string, data any) (*domain.NotificationJob, error) {
	if data == nil {
		return nil, fmt.Errorf("%s template data is nil", templateName)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	return &domain.NotificationJob{
		Kind:    kind,
		To:      to,
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
	}, nil
}

// Deliver sends one job through the mailer. It matches jobs.Deliverer.
func (s *EmailService) Deliver(ctx context.Context, job *domain.NotificationJob) error {
	if err := s.mailer.Send(ctx, job.To, job.Subject, job.HTML, job.Text); err != nil {
		return fmt.Errorf("failed to send %s email: %w", job.Kind, err)
	}
	return nil
}

// Provider names the mail transport in use.
func (s *EmailService) Provider() string {
	return s.mailer.Provider()
}

// Probe checks the transport without sending. supported is false when the mailer cannot be probed.
func (s *EmailService) Probe(ctx context.Context) (supported bool, err error) {
	prober, ok := s.mailer.(domain.MailerProber)
	if !ok {
		return false, nil
	}
	return true, prober.Probe(ctx)
}
