package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"calendrier/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	accountRepo  domain.AccountRepository
	sessionRepo  domain.SessionRepository
	hasher       domain.PasswordHasher
	tokenIssuer  domain.TokenIssuer
	verifier     domain.TokenVerifier
	tokenExpiry  time.Duration
	emailService domain.EmailService
	logger       *slog.Logger
	now          func() time.Time
}

// NewAuthService creates an AuthService with the given repositories and auth ports.
// emailService may be nil, in which case no welcome message is sent.
func NewAuthService(
	accountRepo domain.AccountRepository,
	sessionRepo domain.SessionRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	verifier domain.TokenVerifier,
	tokenExpiry time.Duration,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.AuthService {
	return &authService{
		accountRepo:  accountRepo,
		sessionRepo:  sessionRepo,
		hasher:       hasher,
		tokenIssuer:  tokenIssuer,
		verifier:     verifier,
		tokenExpiry:  tokenExpiry,
		emailService: emailService,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *authService) SignUp(ctx context.Context, email, password, displayName string) (*domain.Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := domain.NewAccount(email, strings.TrimSpace(displayName), hash, salt, now, now)
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeEmailData{Email: account.Email, DisplayName: account.DisplayName}
		// A failed welcome mail does not undo sign-up.
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil && !errors.Is(err, domain.ErrMailerNotConfigured) {
			s.logger.WarnContext(ctx, "welcome email not sent", "account_id", account.ID, "err", err)
		}
	}
	return account, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (string, *domain.Account, error) {
	account, err := s.accountRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get account: %w", err)
	}
	if err := s.hasher.Compare(account.PasswordHash, account.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenExpiry),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokenIssuer.Issue(domain.TokenClaims{
		AccountID: account.ID,
		SessionID: session.ID,
		Email:     account.Email,
	}, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, account, nil
}

func (s *authService) SignOut(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	session, err := s.sessionRepo.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.AccountID != claims.AccountID || session.Expired(s.now()) {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func (s *authService) CurrentAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (s *authService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessionRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return n, nil
}
