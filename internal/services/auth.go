package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventregistration/internal/domain"
	"eventregistration/internal/metrics"
)

type authService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	tokens         domain.TokenIssuer
	notifier       domain.NotificationService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAuthService creates an AuthService. notifier may be nil, in which case no welcome
// email is sent.
func NewAuthService(
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	tokens domain.TokenIssuer,
	notifier domain.NotificationService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		tokens:         tokens,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *authService) SignUp(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if isBlank(name) || isBlank(email) || isBlank(password) || isBlank(string(role)) {
		return nil, fmt.Errorf("%w: name, email, password and role are required", domain.ErrInvalidInput)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be %q or %q", domain.ErrInvalidInput, domain.RoleOrganizer, domain.RoleParticipant)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := domain.NewUser(name, email, hash, role, time.Now().UTC())
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	metrics.UsersRegistered.WithLabelValues(string(role)).Inc()
	s.logger.InfoContext(ctx, "user signed up", "email", user.Email, "role", user.Role)

	if s.notifier != nil {
		s.notifier.NotifyWelcome(ctx, user)
	}
	return user, nil
}

func (s *authService) Verify(ctx context.Context, email, password string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.Identity{Email: user.Email, Role: user.Role}, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (string, error) {
	if isBlank(email) || isBlank(password) {
		return "", fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	identity, err := s.Verify(ctx, email, password)
	if err != nil {
		return "", err
	}
	token, err := s.tokens.Issue(identity.Email, identity.Role)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
