package domain

import (
	"context"
	"errors"
	"time"
)

// Queue errors returned by NotificationQueue.Enqueue.
var (
	ErrQueueFull   = errors.New("notification queue is full")
	ErrQueueClosed = errors.New("notification queue is closed")
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
	Provider() string
}

// MailerProber is implemented by mailers that can check their transport without sending.
type MailerProber interface {
	Probe(ctx context.Context) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// Template names understood by the EmailTemplateRenderer.
const (
	TemplateWelcome               = "welcome"
	TemplateRegistrationConfirmed = "registration_confirmed"
	TemplateEventCreated          = "event_created"
	TemplateCustom                = "custom"
)

// NotificationKind identifies what triggered a notification.
type NotificationKind string

const (
	NotificationWelcome             NotificationKind = "welcome"
	NotificationRegistrationConfirm NotificationKind = "event-registration-confirmed"
	NotificationEventCreated        NotificationKind = "event-created-broadcast"
	NotificationCustomBroadcast     NotificationKind = "custom-broadcast"
)

// NotificationJob is a single rendered message waiting for delivery.
type NotificationJob struct {
	ID         string
	Kind       NotificationKind
	To         string
	Subject    string
	HTML       string
	Text       string
	EnqueuedAt time.Time
}

// QueueStats is a snapshot of the notification queue counters.
// swagger:model QueueStats
type QueueStats struct {
	Capacity  int   `json:"capacity"`
	Depth     int   `json:"depth"`
	Workers   int   `json:"workers"`
	Enqueued  int64 `json:"enqueued"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Retried   int64 `json:"retried"`
	Dropped   int64 `json:"dropped"`
}

// NotificationQueue hands jobs to background workers. Enqueue never blocks.
type NotificationQueue interface {
	Enqueue(job *NotificationJob) error
	Stats() QueueStats
}

// BroadcastResult is the tally returned by a custom broadcast.
// swagger:model BroadcastResult
type BroadcastResult struct {
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`
}

// EmailStatus describes the mail transport and the queue behind it.
// swagger:model EmailStatus
type EmailStatus struct {
	Provider    string     `json:"provider"`
	FromAddress string     `json:"from_address"`
	Transport   string     `json:"transport"`
	Error       string     `json:"error,omitempty"`
	Queue       QueueStats `json:"queue"`
	CheckedAt   time.Time  `json:"checked_at"`
}

// Transport states reported in EmailStatus.
const (
	TransportOK         = "ok"
	TransportUnverified = "unverified"
	TransportError      = "error"
)

// WelcomeEmailData holds data for the welcome email.
type WelcomeEmailData struct {
	Name  string
	Email string
	Role  Role
}

// RegistrationEmailData holds data for the event registration confirmation email.
type RegistrationEmailData struct {
	Email string
	Event *Event
}

// EventCreatedEmailData holds data for the new event announcement.
type EventCreatedEmailData struct {
	Event *Event
}

// CustomEmailData holds data for an ad-hoc broadcast.
type CustomEmailData struct {
	Subject string
	Message string
}

// NotificationService is the fire-and-forget side channel. None of its methods fail the
// business operation that triggered them.
type NotificationService interface {
	// Send attempts a single delivery and reports whether it succeeded.
	Send(ctx context.Context, to, subject, htmlBody string) bool
	// BroadcastCustom sends to every recipient in order, or to all participants when
	// recipients is empty, and returns the tally.
	BroadcastCustom(ctx context.Context, subject, message string, recipients []string) (BroadcastResult, error)
	NotifyWelcome(ctx context.Context, user *User)
	NotifyRegistrationConfirmed(ctx context.Context, event *Event, email string)
	NotifyEventCreated(ctx context.Context, event *Event)
	Status(ctx context.Context) (*EmailStatus, error)
}
