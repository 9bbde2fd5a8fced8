package memory

import (
	"context"
	"sync"

	"eventregistration/internal/domain"
)

type eventRepository struct {
	mu     sync.RWMutex
	events []*domain.Event
}

// NewEventRepository returns a volatile, process-local EventRepository.
func NewEventRepository() domain.EventRepository {
	return &eventRepository{}
}

func (r *eventRepository) Create(_ context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = len(r.events) + 1
	if e.Participants == nil {
		e.Participants = []string{}
	}
	r.events = append(r.events, cloneEvent(e))
	return nil
}

func (r *eventRepository) GetByID(_ context.Context, id int) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e := r.find(id)
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (r *eventRepository) List(_ context.Context) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, cloneEvent(e))
	}
	return out, nil
}

func (r *eventRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events), nil
}

func (r *eventRepository) AddParticipant(_ context.Context, eventID int, email string) (*domain.Event, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.find(eventID)
	if e == nil {
		return nil, false, domain.ErrNotFound
	}
	if e.HasParticipant(email) {
		return cloneEvent(e), false, nil
	}
	e.Participants = append(e.Participants, email)
	return cloneEvent(e), true, nil
}

// find assumes r.mu is held. IDs are dense and start at 1.
func (r *eventRepository) find(id int) *domain.Event {
	if id < 1 || id > len(r.events) {
		return nil
	}
	return r.events[id-1]
}

func cloneEvent(e *domain.Event) *domain.Event {
	out := *e
	out.Participants = append([]string{}, e.Participants...)
	return &out
}
