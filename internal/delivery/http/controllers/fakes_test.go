package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/domain"

	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dest when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	if dest != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, dest))
	}
	return raw.Error
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	user     *domain.User
	token    string
	err      error
	gotName  string
	gotEmail string
	gotRole  domain.Role
	signUps  int
	signIns  int
}

func (f *fakeAuthService) SignUp(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	f.signUps++
	f.gotName, f.gotEmail, f.gotRole = name, email, role
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeAuthService) Verify(ctx context.Context, email, password string) (*domain.Identity, error) {
	return nil, f.err
}

func (f *fakeAuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	f.signIns++
	f.gotEmail = email
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	event      *domain.Event
	events     []*domain.Event
	err        error
	gotEventID int
	gotCaller  string
	gotName    string
}

func (f *fakeEventService) CreateEvent(ctx context.Context, name, description, date, eventTime string) (*domain.Event, error) {
	f.gotName = name
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) RegisterForEvent(ctx context.Context, eventID int, callerEmail string) (*domain.Event, bool, error) {
	f.gotEventID, f.gotCaller = eventID, callerEmail
	if f.err != nil {
		return nil, false, f.err
	}
	return f.event, true, nil
}

func (f *fakeEventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

// fakeNotificationService implements domain.NotificationService for handler tests.
type fakeNotificationService struct {
	result        domain.BroadcastResult
	status        *domain.EmailStatus
	err           error
	gotRecipients []string
	broadcasts    int
}

func (f *fakeNotificationService) Send(ctx context.Context, to, subject, htmlBody string) bool {
	return f.err == nil
}

func (f *fakeNotificationService) BroadcastCustom(ctx context.Context, subject, message string, recipients []string) (domain.BroadcastResult, error) {
	f.broadcasts++
	f.gotRecipients = recipients
	return f.result, f.err
}

func (f *fakeNotificationService) NotifyWelcome(ctx context.Context, user *domain.User) {}

func (f *fakeNotificationService) NotifyRegistrationConfirmed(ctx context.Context, event *domain.Event, email string) {
}

func (f *fakeNotificationService) NotifyEventCreated(ctx context.Context, event *domain.Event) {}

func (f *fakeNotificationService) Status(ctx context.Context) (*domain.EmailStatus, error) {
	return f.status, f.err
}
