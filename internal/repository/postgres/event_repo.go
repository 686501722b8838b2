package postgres

import (
	"context"
	"database/sql"

	"calendrier/internal/domain"
)

const eventColumns = `id, title, start, "end", all_day, category, color, user_id, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns the personal events store (table events).
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, start, "end", all_day, category, color, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Start, e.End, e.AllDay, nullableString(e.Category), nullableString(e.Color),
		e.OwnerID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND user_id = $2`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, start = $2, "end" = $3, category = $4, color = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`
	res, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Start, e.End, nullableString(e.Category), nullableString(e.Color), e.UpdatedAt,
		e.ID, e.OwnerID,
	)
	return affectedOne(res, err)
}

func (r *eventRepository) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, id, ownerID)
	return affectedOne(res, err)
}

func (r *eventRepository) ListByOwner(ctx context.Context, ownerID string, window domain.TimeWindow) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR "end" > $2)
		  AND ($3::timestamptz IS NULL OR start < $3)
		ORDER BY start, "end"
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, nullableTime(window.From), nullableTime(window.To))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var category, color sql.NullString
	if err := row.Scan(&e.ID, &e.Title, &e.Start, &e.End, &e.AllDay, &category, &color, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Category = stringPtr(category)
	e.Color = stringPtr(color)
	return e, nil
}

// affectedOne turns "no row matched" into domain.ErrNotFound.
func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return notFound(err, domain.ErrNotFound)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
