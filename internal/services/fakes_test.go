package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"eventregistration/internal/domain"
)

const testTimeout = time.Second

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	order   []string
	err     error // if set, every method returns this error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	f.byEmail[u.Email] = u
	f.order = append(f.order, u.Email)
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.User
	for _, email := range f.order {
		if u := f.byEmail[email]; u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) add(name, email string, role domain.Role) {
	_ = f.Create(context.Background(), domain.NewUser(name, email, "hashed:pw", role, time.Now()))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	events []*domain.Event
	err    error // if set, every method returns this error
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = len(f.events) + 1
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id < 1 || id > len(f.events) {
		return nil, domain.ErrNotFound
	}
	return f.events[id-1], nil
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeEventRepo) Count(ctx context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.events), nil
}

func (f *fakeEventRepo) AddParticipant(ctx context.Context, eventID int, email string) (*domain.Event, bool, error) {
	e, err := f.GetByID(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	if e.HasParticipant(email) {
		return e, false, nil
	}
	e.Participants = append(e.Participants, email)
	return e, true, nil
}

type fakeHasher struct {
	err error
}

func (f *fakeHasher) Hash(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hashed:" + password, nil
}

func (f *fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(email string, role domain.Role) (string, error) {
	return fmt.Sprintf("token:%s:%s", email, role), nil
}

// fakeNotifier records the notifications a service triggered.
type fakeNotifier struct {
	welcomed   []string
	registered []string
	created    []int
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, htmlBody string) bool { return true }

func (f *fakeNotifier) BroadcastCustom(ctx context.Context, subject, message string, recipients []string) (domain.BroadcastResult, error) {
	return domain.BroadcastResult{}, nil
}

func (f *fakeNotifier) NotifyWelcome(ctx context.Context, user *domain.User) {
	f.welcomed = append(f.welcomed, user.Email)
}

func (f *fakeNotifier) NotifyRegistrationConfirmed(ctx context.Context, event *domain.Event, email string) {
	f.registered = append(f.registered, fmt.Sprintf("%d:%s", event.ID, email))
}

func (f *fakeNotifier) NotifyEventCreated(ctx context.Context, event *domain.Event) {
	f.created = append(f.created, event.ID)
}

func (f *fakeNotifier) Status(ctx context.Context) (*domain.EmailStatus, error) {
	return &domain.EmailStatus{}, nil
}

// fakeMailer records every Send call; addresses in fail error out and addresses in panics panic.
type fakeMailer struct {
	mu     sync.Mutex
	sent   []string
	calls  map[string]int
	fail   map[string]bool
	panics map[string]bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{calls: make(map[string]int), fail: make(map[string]bool), panics: make(map[string]bool)}
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.mu.Lock()
	f.calls[to]++
	f.mu.Unlock()
	if f.panics[to] {
		panic("mailer exploded")
	}
	if f.fail[to] {
		return errors.New("mailbox unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeMailer) Provider() string { return "fake" }

// fakeProbingMailer adds a transport check to fakeMailer.
type fakeProbingMailer struct {
	*fakeMailer
	probeErr error
}

func (f *fakeProbingMailer) Probe(ctx context.Context) error { return f.probeErr }

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject:" + templateName, "<p>" + templateName + "</p>", templateName, nil
}

// fakeQueue records enqueued jobs.
type fakeQueue struct {
	jobs []*domain.NotificationJob
	err  error
}

func (f *fakeQueue) Enqueue(job *domain.NotificationJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeQueue) Stats() domain.QueueStats {
	return domain.QueueStats{Capacity: 8, Depth: len(f.jobs), Workers: 1}
}
