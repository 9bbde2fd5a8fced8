package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventregistration/internal/domain"
	"eventregistration/internal/metrics"
)

type eventService struct {
	eventRepo      domain.EventRepository
	notifier       domain.NotificationService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates an EventService. notifier may be nil.
func NewEventService(
	eventRepo domain.EventRepository,
	notifier domain.NotificationService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, name, description, date, eventTime string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if isBlank(name) || isBlank(description) || isBlank(date) || isBlank(eventTime) {
		return nil, fmt.Errorf("%w: name, description, date and time are required", domain.ErrInvalidInput)
	}
	event := domain.NewEvent(name, description, date, eventTime, time.Now().UTC())
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	metrics.EventsCreated.Inc()
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "name", event.Name)

	if s.notifier != nil {
		s.notifier.NotifyEventCreated(ctx, event)
	}
	return event, nil
}

func (s *eventService) RegisterForEvent(ctx context.Context, eventID int, callerEmail string) (*domain.Event, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if isBlank(callerEmail) {
		return nil, false, fmt.Errorf("%w: caller email is required", domain.ErrInvalidInput)
	}
	event, added, err := s.eventRepo.AddParticipant(ctx, eventID, callerEmail)
	if err != nil {
		return nil, false, err
	}
	if !added {
		metrics.Registrations.WithLabelValues("duplicate").Inc()
		return event, false, nil
	}
	metrics.Registrations.WithLabelValues("added").Inc()
	s.logger.InfoContext(ctx, "participant registered", "event_id", event.ID, "email", callerEmail)

	if s.notifier != nil {
		s.notifier.NotifyRegistrationConfirmed(ctx, event, callerEmail)
	}
	return event, true, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.eventRepo.List(ctx)
}

// SeedEvents loads the two fixture events into an empty store. It reports how many were added.
func SeedEvents(ctx context.Context, eventRepo domain.EventRepository) (int, error) {
	count, err := eventRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	fixtures := []*domain.Event{
		domain.NewEvent("Event 1", "Description 1", "2025-01-01", "10:00", time.Now().UTC()),
		domain.NewEvent("Event 2", "Description 2", "2025-01-02", "11:00", time.Now().UTC()),
	}
	for _, e := range fixtures {
		if err := eventRepo.Create(ctx, e); err != nil {
			return 0, fmt.Errorf("seed event %q: %w", e.Name, err)
		}
	}
	return len(fixtures), nil
}
