package postgres

import (
	"context"
	"database/sql"
	"time"

	"calendrier/internal/domain"
)

type sessionRepository struct {
	DB *sql.DB
}

// NewSessionRepository stores sessions keyed by the id the caller generated,
// since that id is also embedded in the issued token.
func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{DB: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `INSERT INTO sessions (id, account_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`
	_, err := r.DB.ExecContext(ctx, query, s.ID, s.AccountID, s.CreatedAt, s.ExpiresAt)
	return err
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT id, account_id, created_at, expires_at FROM sessions WHERE id = $1`
	s := &domain.Session{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.AccountID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return affectedOne(res, err)
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
