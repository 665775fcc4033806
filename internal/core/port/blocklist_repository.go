package port

import (
	"context"

	"github.com/JLCarveth/blog/internal/core/domain"
)

// BlocklistRepository persists banned client addresses. Addresses are stored
// in normalized form (see domain.NormalizeAddress).
type BlocklistRepository interface {
	ListBlocked(ctx context.Context) ([]domain.BlockedAddress, error)
	Insert(ctx context.Context, address domain.BlockedAddress) error
	Remove(ctx context.Context, address string) error
}
