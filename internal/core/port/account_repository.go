package port

import (
	"context"

	"github.com/JLCarveth/blog/internal/core/domain"
)

// AccountRepository exposes persistence behavior for user accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	UpdatePassword(ctx context.Context, id string, passwordHash, salt string) error
	Delete(ctx context.Context, email string) error
}
