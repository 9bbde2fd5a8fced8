package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"eventregistration/internal/domain"
)

type userRepository struct {
	DB      *sql.DB
	dialect Dialect
}

func NewUserRepository(s *Store) domain.UserRepository {
	return &userRepository{DB: s.DB, dialect: s.Dialect}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := r.dialect.Rebind(`
		INSERT INTO users (email, name, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	_, err := r.DB.ExecContext(ctx, query, u.Email, u.Name, u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := r.dialect.Rebind(`
		SELECT email, name, password_hash, role, created_at
		FROM users
		WHERE email = ?
	`)
	u := &domain.User{}
	var role string
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	query := r.dialect.Rebind(`
		SELECT email, name, password_hash, role, created_at
		FROM users
		WHERE role = ?
		ORDER BY created_at, email
	`)
	rows, err := r.DB.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u := &domain.User{}
		var code string
		if err := rows.Scan(&u.Email, &u.Name, &u.PasswordHash, &code, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = domain.Role(code)
		users = append(users, u)
	}
	return users, rows.Err()
}
