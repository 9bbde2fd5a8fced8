package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"eventregistration/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotificationService(mailer domain.Mailer, queue *fakeQueue, users *fakeUserRepo) domain.NotificationService {
	return NewNotificationService(
		NewEmailService(mailer, &fakeRenderer{}),
		queue,
		users,
		NotificationConfig{FromAddress: "no-reply@example.com", SendTimeout: testTimeout},
		discardLogger(),
	)
}

func TestNotificationService_Send(t *testing.T) {
	ctx := context.Background()
	mailer := newFakeMailer()
	mailer.fail["down@example.com"] = true
	mailer.panics["boom@example.com"] = true
	svc := newTestNotificationService(mailer, &fakeQueue{}, newFakeUserRepo())

	assert.True(t, svc.Send(ctx, "ok@example.com", "hi", "<p>hi</p>"))
	assert.False(t, svc.Send(ctx, "down@example.com", "hi", "<p>hi</p>"))
	assert.False(t, svc.Send(ctx, "boom@example.com", "hi", "<p>hi</p>"))
	assert.Equal(t, []string{"ok@example.com"}, mailer.sent)
}

func TestNotificationService_BroadcastCustom_tally(t *testing.T) {
	ctx := context.Background()
	const n, k = 6, 2

	mailer := newFakeMailer()
	var recipients []string
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("user%d@example.com", i)
		recipients = append(recipients, email)
		if i < k {
			mailer.fail[email] = true
		}
	}
	svc := newTestNotificationService(mailer, &fakeQueue{}, newFakeUserRepo())

	result, err := svc.BroadcastCustom(ctx, "Update", "Doors open at 9", recipients)
	require.NoError(t, err)
	assert.Equal(t, domain.BroadcastResult{SuccessCount: n - k, FailureCount: k}, result)
	for _, r := range recipients {
		assert.Equal(t, 1, mailer.calls[r], "exactly one attempt for %s", r)
	}
}

func TestNotificationService_BroadcastCustom_panic_does_not_stop_loop(t *testing.T) {
	ctx := context.Background()
	mailer := newFakeMailer()
	mailer.panics["b@example.com"] = true
	svc := newTestNotificationService(mailer, &fakeQueue{}, newFakeUserRepo())

	result, err := svc.BroadcastCustom(ctx, "s", "m", []string{"a@example.com", "b@example.com", "c@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.BroadcastResult{SuccessCount: 2, FailureCount: 1}, result)
	assert.Equal(t, []string{"a@example.com", "c@example.com"}, mailer.sent)
}

func TestNotificationService_BroadcastCustom_defaults_to_participants(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	users.add("Org", "org@example.com", domain.RoleOrganizer)
	users.add("P1", "p1@example.com", domain.RoleParticipant)
	users.add("P2", "p2@example.com", domain.RoleParticipant)
	mailer := newFakeMailer()
	svc := newTestNotificationService(mailer, &fakeQueue{}, users)

	result, err := svc.BroadcastCustom(ctx, "s", "m", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, []string{"p1@example.com", "p2@example.com"}, mailer.sent)
}

func TestNotificationService_BroadcastCustom_errors(t *testing.T) {
	ctx := context.Background()

	t.Run("blank subject", func(t *testing.T) {
		svc := newTestNotificationService(newFakeMailer(), &fakeQueue{}, newFakeUserRepo())
		_, err := svc.BroadcastCustom(ctx, "", "m", []string{"a@example.com"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("participant lookup fails", func(t *testing.T) {
		users := newFakeUserRepo()
		users.err = errors.New("db down")
		svc := newTestNotificationService(newFakeMailer(), &fakeQueue{}, users)
		_, err := svc.BroadcastCustom(ctx, "s", "m", nil)
		assert.ErrorIs(t, err, users.err)
	})
}

func TestNotificationService_Notify_enqueues(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	users.add("P1", "p1@example.com", domain.RoleParticipant)
	users.add("P2", "p2@example.com", domain.RoleParticipant)
	users.add("Org", "org@example.com", domain.RoleOrganizer)
	queue := &fakeQueue{}
	mailer := newFakeMailer()
	svc := newTestNotificationService(mailer, queue, users)
	event := &domain.Event{ID: 3, Name: "Go"}

	svc.NotifyWelcome(ctx, &domain.User{Name: "Org", Email: "org@example.com", Role: domain.RoleOrganizer})
	svc.NotifyRegistrationConfirmed(ctx, event, "p1@example.com")
	svc.NotifyEventCreated(ctx, event)

	require.Len(t, queue.jobs, 4)
	assert.Equal(t, domain.NotificationWelcome, queue.jobs[0].Kind)
	assert.Equal(t, "org@example.com", queue.jobs[0].To)
	assert.Equal(t, "subject:welcome", queue.jobs[0].Subject)
	assert.Equal(t, domain.NotificationRegistrationConfirm, queue.jobs[1].Kind)
	assert.Equal(t, "p1@example.com", queue.jobs[1].To)
	assert.Equal(t, domain.NotificationEventCreated, queue.jobs[2].Kind)
	assert.Equal(t, "p1@example.com", queue.jobs[2].To)
	assert.Equal(t, "p2@example.com", queue.jobs[3].To)
	assert.Empty(t, mailer.sent, "notify never sends inline")
}

func TestNotificationService_Notify_swallows_failures(t *testing.T) {
	ctx := context.Background()
	queue := &fakeQueue{err: domain.ErrQueueFull}
	svc := newTestNotificationService(newFakeMailer(), queue, newFakeUserRepo())
	assert.NotPanics(t, func() {
		svc.NotifyWelcome(ctx, &domain.User{Email: "a@example.com"})
	})

	broken := NewNotificationService(
		NewEmailService(newFakeMailer(), &fakeRenderer{err: errors.New("bad template")}),
		&fakeQueue{}, newFakeUserRepo(), NotificationConfig{}, discardLogger(),
	)
	assert.NotPanics(t, func() {
		broken.NotifyRegistrationConfirmed(ctx, &domain.Event{ID: 1}, "a@example.com")
	})
}

func TestNotificationService_Status(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		mailer    domain.Mailer
		transport string
		wantErr   bool
	}{
		{name: "unprobed transport", mailer: newFakeMailer(), transport: domain.TransportUnverified},
		{name: "probe ok", mailer: &fakeProbingMailer{fakeMailer: newFakeMailer()}, transport: domain.TransportOK},
		{name: "probe fails", mailer: &fakeProbingMailer{fakeMailer: newFakeMailer(), probeErr: errors.New("dial tcp: refused")}, transport: domain.TransportError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestNotificationService(tt.mailer, &fakeQueue{}, newFakeUserRepo())
			status, err := svc.Status(ctx)
			if tt.wantErr {
				require.Error(t, err)
				assert.NotEmpty(t, status.Error)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, "fake", status.Provider)
			assert.Equal(t, "no-reply@example.com", status.FromAddress)
			assert.Equal(t, tt.transport, status.Transport)
			assert.Equal(t, 8, status.Queue.Capacity)
		})
	}
}

func TestEmailService_Deliver_wraps_error(t *testing.T) {
	mailer := newFakeMailer()
	mailer.fail["x@example.com"] = true
	err := NewEmailService(mailer, &fakeRenderer{}).Deliver(context.Background(), &domain.NotificationJob{Kind: domain.NotificationWelcome, To: "x@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "welcome")
}
