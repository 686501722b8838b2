package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for account operations.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Account represents a registered user.
// swagger:model Account
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAccount returns a new Account with the given fields. ID is typically set by the repository on create.
func NewAccount(email, displayName, passwordHash, salt string, createdAt, updatedAt time.Time) *Account {
	return &Account{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Session is a signed-in period for one account. Its ID is carried as the token's jti,
// so deleting the row signs the token out.
type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TokenClaims are the identity claims carried by an access token.
type TokenClaims struct {
	AccountID string
	SessionID string
	Email     string
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for a signed-in session.
type TokenIssuer interface {
	Issue(claims TokenClaims, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token's signature and expiry and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// AccountRepository defines the interface for account storage
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
}

// SessionRepository stores sign-in sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AuthService covers sign-up, sign-in, sign-out and resolving the current account.
type AuthService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*Account, error)
	SignIn(ctx context.Context, email, password string) (token string, account *Account, err error)
	SignOut(ctx context.Context, sessionID string) error
	// Authenticate verifies the token and that its session is still active.
	Authenticate(ctx context.Context, token string) (*Session, error)
	CurrentAccount(ctx context.Context, accountID string) (*Account, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}
