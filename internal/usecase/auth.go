package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/infra/logger"
	"github.com/JLCarveth/blog/internal/infra/security"
	"github.com/JLCarveth/blog/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the email or password is incorrect.
	// Callers must not learn which of the two it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTooManyAttempts indicates the client address crossed the failed
	// login threshold and is temporarily locked out.
	ErrTooManyAttempts = errors.New("too many failed attempts")
	// ErrUpstreamUnavailable indicates a backing store could not serve the
	// request. The condition is retryable.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// AuthService coordinates credential checks, lockout accounting, and
// session token issuance.
type AuthService struct {
	accounts  port.AccountRepository
	lockout   *security.LockoutTracker
	tokens    *security.TokenService
	publisher port.EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	accounts port.AccountRepository,
	lockout *security.LockoutTracker,
	tokens *security.TokenService,
	publisher port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		accounts:  accounts,
		lockout:   lockout,
		tokens:    tokens,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// LoginResult carries the issued token and the authenticated account.
type LoginResult struct {
	Token   string
	Account domain.Account
}

// Login validates credentials for the given email and issues a session
// token. The lockout check runs before any account lookup or hashing, so a
// locked-out client learns nothing about whether the account exists.
func (s *AuthService) Login(ctx context.Context, email, password, clientAddress string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	address := domain.NormalizeAddress(clientAddress)

	if s.lockout.IsLocked(address) {
		return nil, ErrTooManyAttempts
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.registerFailure(ctx, email, address)
			return nil, ErrInvalidCredentials
		}
		return nil, storeError("lookup account", err)
	}

	if !security.VerifyPassword(password, account.PasswordHash, account.Salt) {
		s.registerFailure(ctx, email, address)
		return nil, ErrInvalidCredentials
	}

	s.lockout.RecordSuccess(address)

	token, err := s.tokens.Issue(account.Email, account.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.publish(func() error {
		return s.publisher.PublishLoginSucceeded(ctx, domain.LoginSucceededEvent{
			EventID:       uuid.NewString(),
			AccountID:     account.ID,
			Email:         account.Email,
			Role:          account.Role,
			ClientAddress: address,
			OccurredAt:    s.now(),
		})
	})

	s.log.Info("login succeeded",
		zap.String("email", logger.MaskEmail(account.Email)),
		zap.String("address", logger.MaskIP(address)),
	)

	return &LoginResult{Token: token, Account: account.Sanitized()}, nil
}

// Verify parses and validates a session token.
func (s *AuthService) Verify(token string) (*security.SessionClaims, error) {
	return s.tokens.Verify(token)
}

// TokenTTL returns the lifetime of issued session tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AuthService) registerFailure(ctx context.Context, email, address string) {
	attempts := s.lockout.RecordFailure(address)

	s.publish(func() error {
		return s.publisher.PublishLoginFailed(ctx, domain.LoginFailedEvent{
			EventID:       uuid.NewString(),
			Email:         email,
			ClientAddress: address,
			OccurredAt:    s.now(),
		})
	})

	s.log.Warn("login failed",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("address", logger.MaskIP(address)),
		zap.Int("attempts", attempts),
	)

	if attempts == s.lockout.Threshold() {
		s.publish(func() error {
			return s.publisher.PublishLockoutEngaged(ctx, domain.LockoutEngagedEvent{
				EventID:       uuid.NewString(),
				ClientAddress: address,
				Attempts:      attempts,
				OccurredAt:    s.now(),
			})
		})

		s.log.Warn("lockout engaged",
			zap.String("address", logger.MaskIP(address)),
			zap.Int("attempts", attempts),
		)
	}
}

func (s *AuthService) publish(fn func() error) {
	if s.publisher == nil {
		return
	}
	if err := fn(); err != nil {
		s.log.Warn("publish event", zap.Error(err))
	}
}

// storeError classifies a repository failure as retryable upstream trouble
// while preserving the original cause in the message.
func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, op, err)
}
