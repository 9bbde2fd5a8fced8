package memory

import (
	"context"
	"sync"

	"eventregistration/internal/domain"
)

type userRepository struct {
	mu      sync.RWMutex
	users   []*domain.User
	byEmail map[string]*domain.User
}

// NewUserRepository returns a volatile, process-local UserRepository.
func NewUserRepository() domain.UserRepository {
	return &userRepository{byEmail: make(map[string]*domain.User)}
}

func (r *userRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	stored := *u
	r.users = append(r.users, &stored)
	r.byEmail[u.Email] = &stored
	return nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// ListByRole returns users with the given role in signup order.
func (r *userRepository) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.User{}
	for _, u := range r.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}
