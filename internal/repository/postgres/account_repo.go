package postgres

import (
	"context"
	"database/sql"

	"calendrier/internal/domain"
)

type accountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) domain.AccountRepository {
	return &accountRepository{DB: db}
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (email, display_name, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		a.Email, a.DisplayName, a.PasswordHash, a.Salt, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, email, display_name, password_hash, salt, created_at, updated_at
		FROM accounts WHERE email = $1
	`
	return r.get(ctx, query, email)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT id, email, display_name, password_hash, salt, created_at, updated_at
		FROM accounts WHERE id = $1
	`
	return r.get(ctx, query, id)
}

func (r *accountRepository) get(ctx context.Context, query string, arg any) (*domain.Account, error) {
	a := &domain.Account{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &a.Salt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, domain.ErrAccountNotFound)
	}
	return a, nil
}
