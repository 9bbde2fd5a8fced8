package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationController_SendNotification(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		fakeErr        error
		wantStatus     int
		wantCode       string
		wantRecipients []string
	}{
		{
			name:           "explicit recipients",
			body:           SendNotificationRequest{Subject: "Hi", Message: "Doors at 9", RecipientEmails: []string{"a@x.com", "b@x.com"}},
			wantStatus:     http.StatusOK,
			wantRecipients: []string{"a@x.com", "b@x.com"},
		},
		{
			name:       "no recipients means everyone",
			body:       `{"subject":"Hi","message":"Doors at 9"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing message",
			body:       `{"subject":"Hi"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "blank recipient",
			body:       `{"subject":"Hi","message":"m","recipientEmails":["a@x.com",""]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "participant lookup fails",
			body:       `{"subject":"Hi","message":"m"}`,
			fakeErr:    errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeNotificationService{result: domain.BroadcastResult{SuccessCount: 2, FailureCount: 0}, err: tt.fakeErr}
			rr := httptest.NewRecorder()

			NewNotificationController(testLogger, fake).SendNotification(rr, jsonRequest(t, http.MethodPost, "/send-notification", tt.body))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				apiErr := decodeEnvelope(t, rr, nil)
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.Equal(t, tt.wantRecipients, fake.gotRecipients)
			assert.JSONEq(t, `{"data":{"successCount":2,"failureCount":0},"error":null}`, rr.Body.String())
		})
	}
}

func TestNotificationController_EmailStatus(t *testing.T) {
	status := &domain.EmailStatus{Provider: "smtp", Transport: domain.TransportOK}

	t.Run("ok", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewNotificationController(testLogger, &fakeNotificationService{status: status}).
			EmailStatus(rr, httptest.NewRequest(http.MethodGet, "/email-status", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var got domain.EmailStatus
		require.Nil(t, decodeEnvelope(t, rr, &got))
		assert.Equal(t, "smtp", got.Provider)
		assert.Equal(t, domain.TransportOK, got.Transport)
	})

	t.Run("probe failure", func(t *testing.T) {
		rr := httptest.NewRecorder()
		fake := &fakeNotificationService{status: status, err: errors.New("email transport check failed: dial tcp: refused")}
		NewNotificationController(testLogger, fake).EmailStatus(rr, httptest.NewRequest(http.MethodGet, "/email-status", nil))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		apiErr := decodeEnvelope(t, rr, nil)
		require.NotNil(t, apiErr)
		assert.Contains(t, apiErr.Message, "transport check failed")
	})
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func TestSystemController(t *testing.T) {
	t.Run("welcome", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewSystemController(testLogger, fakePinger{}).Welcome(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Welcome")
	})

	t.Run("healthy", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewSystemController(testLogger, fakePinger{}).Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("store down", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewSystemController(testLogger, fakePinger{err: errors.New("down")}).Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
