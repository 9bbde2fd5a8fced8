package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventregistration/internal/domain"
)

// createAttempts bounds retries when two writers compute the same next id.
const createAttempts = 3

type eventRepository struct {
	DB      *sql.DB
	dialect Dialect
}

func NewEventRepository(s *Store) domain.EventRepository {
	return &eventRepository{DB: s.DB, dialect: s.Dialect}
}

// Create assigns id = count + 1 inside a transaction. A concurrent writer that picked the
// same id loses on the primary key and retries.
func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		id, err := r.insertNext(ctx, e)
		if err == nil {
			e.ID = id
			if e.Participants == nil {
				e.Participants = []string{}
			}
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("assign event id: %w", lastErr)
}

func (r *eventRepository) insertNext(ctx context.Context, e *domain.Event) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, err
	}
	id := count + 1
	query := r.dialect.Rebind(`
		INSERT INTO events (id, name, description, event_date, event_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if _, err := tx.ExecContext(ctx, query, id, e.Name, e.Description, e.Date, e.Time, e.CreatedAt); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id int) (*domain.Event, error) {
	query := r.dialect.Rebind(`
		SELECT id, name, description, event_date, event_time, created_at
		FROM events
		WHERE id = ?
	`)
	e := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.Time, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	participants, err := r.participants(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Participants = participants
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, description, event_date, event_time, created_at
		FROM events
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	byID := make(map[int]*domain.Event)
	for rows.Next() {
		e := &domain.Event{Participants: []string{}}
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.Time, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	prows, err := r.DB.QueryContext(ctx, `
		SELECT event_id, email
		FROM event_participants
		ORDER BY event_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var (
			eventID int
			email   string
		)
		if err := prows.Scan(&eventID, &email); err != nil {
			return nil, err
		}
		if e, ok := byID[eventID]; ok {
			e.Participants = append(e.Participants, email)
		}
	}
	return events, prows.Err()
}

func (r *eventRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	return count, err
}

// AddParticipant relies on the (event_id, email) primary key; ON CONFLICT DO NOTHING makes a
// repeated registration report added=false instead of failing.
func (r *eventRepository) AddParticipant(ctx context.Context, eventID int, email string) (*domain.Event, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, r.dialect.Rebind(`SELECT COUNT(*) FROM events WHERE id = ?`), eventID).Scan(&exists)
	if err != nil {
		return nil, false, err
	}
	if exists == 0 {
		return nil, false, domain.ErrNotFound
	}

	var position int
	err = tx.QueryRowContext(ctx, r.dialect.Rebind(`
		SELECT COALESCE(MAX(position), 0) + 1
		FROM event_participants
		WHERE event_id = ?
	`), eventID).Scan(&position)
	if err != nil {
		return nil, false, err
	}

	res, err := tx.ExecContext(ctx, r.dialect.Rebind(`
		INSERT INTO event_participants (event_id, email, position)
		VALUES (?, ?, ?)
		ON CONFLICT (event_id, email) DO NOTHING
	`), eventID, email, position)
	if err != nil {
		return nil, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	event, err := r.GetByID(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	return event, affected > 0, nil
}

func (r *eventRepository) participants(ctx context.Context, eventID int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, r.dialect.Rebind(`
		SELECT email
		FROM event_participants
		WHERE event_id = ?
		ORDER BY position
	`), eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	return out, rows.Err()
}
