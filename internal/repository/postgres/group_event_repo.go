package postgres

import (
	"context"
	"database/sql"

	"calendrier/internal/domain"
)

const groupEventColumns = `id, title, start_at, end_at, all_day, category, color, group_id, created_by, created_at, updated_at`

type groupEventRepository struct {
	DB *sql.DB
}

// NewGroupEventRepository returns the group events store (table group_events).
func NewGroupEventRepository(db *sql.DB) domain.GroupEventRepository {
	return &groupEventRepository{DB: db}
}

func (r *groupEventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO group_events (title, start_at, end_at, all_day, category, color, group_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Start, e.End, e.AllDay, nullableString(e.Category), nullableString(e.Color),
		e.GroupID, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *groupEventRepository) GetByID(ctx context.Context, id, groupID string) (*domain.Event, error) {
	query := `SELECT ` + groupEventColumns + ` FROM group_events WHERE id = $1 AND group_id = $2`
	e, err := scanGroupEvent(r.DB.QueryRowContext(ctx, query, id, groupID))
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return e, nil
}

func (r *groupEventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE group_events
		SET title = $1, start_at = $2, end_at = $3, category = $4, color = $5, updated_at = $6
		WHERE id = $7 AND group_id = $8
	`
	res, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Start, e.End, nullableString(e.Category), nullableString(e.Color), e.UpdatedAt,
		e.ID, e.GroupID,
	)
	return affectedOne(res, err)
}

func (r *groupEventRepository) Delete(ctx context.Context, id, groupID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM group_events WHERE id = $1 AND group_id = $2`, id, groupID)
	return affectedOne(res, err)
}

func (r *groupEventRepository) ListByGroup(ctx context.Context, groupID string, window domain.TimeWindow) ([]*domain.Event, error) {
	query := `
		SELECT ` + groupEventColumns + `
		FROM group_events
		WHERE group_id = $1
		  AND ($2::timestamptz IS NULL OR end_at > $2)
		  AND ($3::timestamptz IS NULL OR start_at < $3)
		ORDER BY start_at ASC, end_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, groupID, nullableTime(window.From), nullableTime(window.To))
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanGroupEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanGroupEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var category, color sql.NullString
	if err := row.Scan(&e.ID, &e.Title, &e.Start, &e.End, &e.AllDay, &category, &color, &e.GroupID, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Category = stringPtr(category)
	e.Color = stringPtr(color)
	return e, nil
}
