package domain

import (
	"context"
	"time"
)

// Event represents a scheduled event and the emails registered for it.
// swagger:model Event
type Event struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewEvent returns a new Event with no participants. ID is set by the repository on create.
func NewEvent(name, description, date, eventTime string, createdAt time.Time) *Event {
	return &Event{
		Name:         name,
		Description:  description,
		Date:         date,
		Time:         eventTime,
		Participants: []string{},
		CreatedAt:    createdAt,
	}
}

// HasParticipant reports whether email is already registered for the event.
func (e *Event) HasParticipant(email string) bool {
	for _, p := range e.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// EventRepository defines the interface for event storage.
// Create assigns ID = number of stored events + 1 atomically.
// AddParticipant returns ErrNotFound for an unknown event and added=false when the email is
// already registered; the membership check and the append happen atomically.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Count(ctx context.Context) (int, error)
	AddParticipant(ctx context.Context, eventID int, email string) (event *Event, added bool, err error)
}

// EventService defines the event registry operations.
type EventService interface {
	CreateEvent(ctx context.Context, name, description, date, eventTime string) (*Event, error)
	// RegisterForEvent adds callerEmail to the event. Returns (event, created, err): created is
	// false when the caller was already registered.
	RegisterForEvent(ctx context.Context, eventID int, callerEmail string) (*Event, bool, error)
	ListEvents(ctx context.Context) ([]*Event, error)
}
