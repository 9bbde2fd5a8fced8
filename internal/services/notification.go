package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventregistration/internal/domain"
	"eventregistration/internal/metrics"
)

// NotificationConfig holds the dispatcher settings that come from the environment.
type NotificationConfig struct {
	FromAddress string
	SendTimeout time.Duration
}

type notificationService struct {
	email    *EmailService
	queue    domain.NotificationQueue
	userRepo domain.UserRepository
	cfg      NotificationConfig
	logger   *slog.Logger
}

// NewNotificationService returns the dispatcher. Notify* methods render and enqueue; Send and
// BroadcastCustom deliver synchronously.
func NewNotificationService(
	email *EmailService,
	queue domain.NotificationQueue,
	userRepo domain.UserRepository,
	cfg NotificationConfig,
	logger *slog.Logger,
) domain.NotificationService {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &notificationService{
		email:    email,
		queue:    queue,
		userRepo: userRepo,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *notificationService) Send(ctx context.Context, to, subject, htmlBody string) bool {
	job := &domain.NotificationJob{
		Kind:    domain.NotificationCustomBroadcast,
		To:      to,
		Subject: subject,
		HTML:    htmlBody,
	}
	return s.send(ctx, job)
}

// send makes exactly one delivery attempt. Transport errors and panics are reported as false.
func (s *notificationService) send(ctx context.Context, job *domain.NotificationJob) (ok bool) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "email send panicked", "to", job.To, "kind", job.Kind, "panic", r)
			ok = false
		}
		outcome := "delivered"
		if !ok {
			outcome = "failed"
		}
		metrics.Notifications.WithLabelValues(string(job.Kind), outcome).Inc()
	}()

	if err := s.email.Deliver(ctx, job); err != nil {
		s.logger.WarnContext(ctx, "email send failed", "to", job.To, "kind", job.Kind, "err", err)
		return false
	}
	return true
}

func (s *notificationService) BroadcastCustom(ctx context.Context, subject, message string, recipients []string) (domain.BroadcastResult, error) {
	var result domain.BroadcastResult
	if isBlank(subject) || isBlank(message) {
		return result, fmt.Errorf("%w: subject and message are required", domain.ErrInvalidInput)
	}
	if len(recipients) == 0 {
		all, err := s.participantEmails(ctx)
		if err != nil {
			return result, err
		}
		recipients = all
	}

	tmpl, err := s.email.Compose(domain.NotificationCustomBroadcast, domain.TemplateCustom, "",
		&domain.CustomEmailData{Subject: subject, Message: message})
	if err != nil {
		return result, err
	}
	for _, to := range recipients {
		job := *tmpl
		job.To = to
		if s.send(ctx, &job) {
			result.SuccessCount++
		} else {
			result.FailureCount++
		}
	}
	s.logger.InfoContext(ctx, "custom broadcast finished",
		"recipients", len(recipients), "success", result.SuccessCount, "failure", result.FailureCount)
	return result, nil
}

func (s *notificationService) NotifyWelcome(ctx context.Context, user *domain.User) {
	data := &domain.WelcomeEmailData{Name: user.Name, Email: user.Email, Role: user.Role}
	s.enqueue(ctx, domain.NotificationWelcome, domain.TemplateWelcome, []string{user.Email}, data)
}

func (s *notificationService) NotifyRegistrationConfirmed(ctx context.Context, event *domain.Event, email string) {
	data := &domain.RegistrationEmailData{Email: email, Event: event}
	s.enqueue(ctx, domain.NotificationRegistrationConfirm, domain.TemplateRegistrationConfirmed, []string{email}, data)
}

func (s *notificationService) NotifyEventCreated(ctx context.Context, event *domain.Event) {
	recipients, err := s.participantEmails(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list participants for event broadcast", "event_id", event.ID, "err", err)
		return
	}
	s.enqueue(ctx, domain.NotificationEventCreated, domain.TemplateEventCreated, recipients, &domain.EventCreatedEmailData{Event: event})
}

// enqueue renders once and queues one job per recipient. Failures are logged and swallowed.
func (s *notificationService) enqueue(ctx context.Context, kind domain.NotificationKind, templateName string, recipients []string, data any) {
	if len(recipients) == 0 {
		return
	}
	tmpl, err := s.email.Compose(kind, templateName, "", data)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to compose notification", "kind", kind, "err", err)
		return
	}
	for _, to := range recipients {
		job := *tmpl
		job.To = to
		if err := s.queue.Enqueue(&job); err != nil {
			s.logger.WarnContext(ctx, "failed to enqueue notification", "kind", kind, "to", to, "err", err)
		}
	}
}

func (s *notificationService) Status(ctx context.Context) (*domain.EmailStatus, error) {
	status := &domain.EmailStatus{
		Provider:    s.email.Provider(),
		FromAddress: s.cfg.FromAddress,
		Transport:   domain.TransportUnverified,
		Queue:       s.queue.Stats(),
		CheckedAt:   time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()
	supported, err := s.email.Probe(ctx)
	switch {
	case !supported:
	case err != nil:
		status.Transport = domain.TransportError
		status.Error = err.Error()
		return status, fmt.Errorf("email transport check failed: %w", err)
	default:
		status.Transport = domain.TransportOK
	}
	return status, nil
}

func (s *notificationService) participantEmails(ctx context.Context) ([]string, error) {
	users, err := s.userRepo.ListByRole(ctx, domain.RoleParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return emails, nil
}
