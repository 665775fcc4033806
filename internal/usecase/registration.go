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
	// ErrEmailTaken indicates an account with the given email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrPasswordPolicyViolation indicates the password does not satisfy
	// complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrAccountNotFound indicates no account exists for the given email.
	ErrAccountNotFound = errors.New("account not found")
	// ErrMissingField indicates a required registration field is empty
	// after trimming.
	ErrMissingField = errors.New("required field is missing")
)

// RegistrationService handles account onboarding and credential lifecycle.
type RegistrationService struct {
	accounts  port.AccountRepository
	publisher port.EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(accounts port.AccountRepository, publisher port.EventPublisher, log *zap.Logger) *RegistrationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{
		accounts:  accounts,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a new account with the default role. The password is
// checked against the platform policy with the email and username as
// contextual inputs before any hashing happens.
func (s *RegistrationService) Register(ctx context.Context, email, username, password string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" {
		return nil, fmt.Errorf("%w: email", ErrMissingField)
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username", ErrMissingField)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password", ErrMissingField)
	}

	validator := security.DefaultPasswordValidator(email, username)
	if err := validator.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	hash, salt, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		Role:         domain.DefaultRoleName,
		Verified:     false,
		CreatedAt:    s.now(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storeError("create account", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAccountRegistered(ctx, domain.AccountRegisteredEvent{
			EventID:    uuid.NewString(),
			AccountID:  account.ID,
			Email:      account.Email,
			Username:   account.Username,
			Role:       account.Role,
			OccurredAt: account.CreatedAt,
		}); err != nil {
			s.log.Warn("publish event", zap.Error(err))
		}
	}

	s.log.Info("account registered",
		zap.String("email", logger.MaskEmail(account.Email)),
		zap.String("role", account.Role),
	)

	sanitized := account.Sanitized()
	return &sanitized, nil
}

// ChangePassword verifies the current password and installs a new hash and
// salt pair. The old salt is discarded together with the old hash.
func (s *RegistrationService) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	email = strings.TrimSpace(email)
	if email == "" || currentPassword == "" {
		return ErrInvalidCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return storeError("lookup account", err)
	}

	if !security.VerifyPassword(currentPassword, account.PasswordHash, account.Salt) {
		return ErrInvalidCredentials
	}

	validator := security.DefaultPasswordValidator(account.Email, account.Username)
	validator = validator.With(security.RequireDifferentFrom(currentPassword))
	if err := validator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	hash, salt, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, hash, salt); err != nil {
		return storeError("update password", err)
	}

	s.log.Info("password changed", zap.String("email", logger.MaskEmail(account.Email)))

	return nil
}

// DeleteAccount removes an account by email.
func (s *RegistrationService) DeleteAccount(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrAccountNotFound
	}

	if err := s.accounts.Delete(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return storeError("delete account", err)
	}

	s.log.Info("account deleted", zap.String("email", logger.MaskEmail(email)))

	return nil
}
