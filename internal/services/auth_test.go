package services

import (
	"context"
	"errors"
	"testing"

	"eventregistration/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(repo *fakeUserRepo, notifier domain.NotificationService) domain.AuthService {
	return NewAuthService(repo, &fakeHasher{}, fakeTokens{}, notifier, discardLogger(), testTimeout)
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		role     domain.Role
		errIs    error
	}{
		{name: "organizer", userName: "Alice", email: "alice@example.com", password: "pw", role: domain.RoleOrganizer},
		{name: "participant", userName: "Pat", email: "pat@example.com", password: "pw", role: domain.RoleParticipant},
		{name: "blank name", userName: " ", email: "a@example.com", password: "pw", role: domain.RoleOrganizer, errIs: domain.ErrInvalidInput},
		{name: "blank email", userName: "A", email: "", password: "pw", role: domain.RoleOrganizer, errIs: domain.ErrInvalidInput},
		{name: "blank password", userName: "A", email: "a@example.com", password: "", role: domain.RoleOrganizer, errIs: domain.ErrInvalidInput},
		{name: "blank role", userName: "A", email: "a@example.com", password: "pw", role: "", errIs: domain.ErrInvalidInput},
		{name: "unknown role", userName: "A", email: "a@example.com", password: "pw", role: "admin", errIs: domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			notifier := &fakeNotifier{}
			svc := newTestAuthService(repo, notifier)

			user, err := svc.SignUp(ctx, tt.userName, tt.email, tt.password, tt.role)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				assert.Nil(t, user)
				assert.Empty(t, repo.order)
				assert.Empty(t, notifier.welcomed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, user.Email)
			assert.Equal(t, tt.role, user.Role)
			assert.Equal(t, "hashed:"+tt.password, user.PasswordHash)
			assert.Equal(t, []string{tt.email}, notifier.welcomed)
		})
	}
}

func TestAuthService_SignUp_duplicate_email(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := newTestAuthService(repo, notifier)

	_, err := svc.SignUp(ctx, "Alice", "alice@example.com", "pw", domain.RoleOrganizer)
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "Alice Again", "alice@example.com", "other", domain.RoleParticipant)
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	stored, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.Name)
	assert.Equal(t, domain.RoleOrganizer, stored.Role)
	assert.Len(t, notifier.welcomed, 1)
}

func TestAuthService_SignUp_email_is_case_sensitive(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(newFakeUserRepo(), nil)

	_, err := svc.SignUp(ctx, "A", "Alice@example.com", "pw", domain.RoleOrganizer)
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "A", "alice@example.com", "pw", domain.RoleOrganizer)
	assert.NoError(t, err)
}

func TestAuthService_SignUp_errors_are_wrapped(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("db down")

	repo := newFakeUserRepo()
	repo.err = dbErr
	_, err := newTestAuthService(repo, nil).SignUp(ctx, "A", "a@example.com", "pw", domain.RoleOrganizer)
	assert.ErrorIs(t, err, dbErr)

	hashErr := errors.New("hash failed")
	svc := NewAuthService(newFakeUserRepo(), &fakeHasher{err: hashErr}, fakeTokens{}, nil, discardLogger(), testTimeout)
	_, err = svc.SignUp(ctx, "A", "a@example.com", "pw", domain.RoleOrganizer)
	assert.ErrorIs(t, err, hashErr)
}

func TestAuthService_Verify(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo, nil)
	_, err := svc.SignUp(ctx, "Alice", "alice@example.com", "s3cret", domain.RoleOrganizer)
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		errIs    error
	}{
		{name: "correct credentials", email: "alice@example.com", password: "s3cret"},
		{name: "unknown email", email: "bob@example.com", password: "s3cret", errIs: domain.ErrUserNotFound},
		{name: "wrong password", email: "alice@example.com", password: "nope", errIs: domain.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := svc.Verify(ctx, tt.email, tt.password)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				assert.Nil(t, identity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, &domain.Identity{Email: "alice@example.com", Role: domain.RoleOrganizer}, identity)
		})
	}
}

func TestAuthService_SignIn(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(newFakeUserRepo(), nil)
	_, err := svc.SignUp(ctx, "Pat", "pat@example.com", "pw", domain.RoleParticipant)
	require.NoError(t, err)

	token, err := svc.SignIn(ctx, "pat@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "token:pat@example.com:participant", token)

	_, err = svc.SignIn(ctx, "pat@example.com", "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
