package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/infra/logger"
	"github.com/JLCarveth/blog/internal/repository"
)

var (
	// ErrAddressRequired indicates a ban or unban request carried no address.
	ErrAddressRequired = errors.New("address is required")
	// ErrAddressNotBlocked indicates an unban targeted an address that is
	// not on the blocklist.
	ErrAddressNotBlocked = errors.New("address is not blocked")
)

// BlocklistCache keeps an in-memory set of banned client addresses so the
// request path never queries the store. Mutations write through to the
// store first and refresh the snapshot only after the write succeeds.
type BlocklistCache struct {
	store     port.BlocklistRepository
	publisher port.EventPublisher
	log       *zap.Logger
	now       func() time.Time

	mu       sync.RWMutex
	snapshot map[string]struct{}
}

// NewBlocklistCache constructs an empty cache. Call Refresh before serving
// traffic; an empty cache blocks nobody.
func NewBlocklistCache(store port.BlocklistRepository, publisher port.EventPublisher, log *zap.Logger) *BlocklistCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &BlocklistCache{
		store:     store,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		snapshot:  make(map[string]struct{}),
	}
}

// Refresh replaces the snapshot with the store's current contents. On store
// failure the previous snapshot stays in place.
func (c *BlocklistCache) Refresh(ctx context.Context) error {
	blocked, err := c.store.ListBlocked(ctx)
	if err != nil {
		return storeError("list blocked addresses", err)
	}

	next := make(map[string]struct{}, len(blocked))
	for _, entry := range blocked {
		next[domain.NormalizeAddress(entry.Address)] = struct{}{}
	}

	c.mu.Lock()
	c.snapshot = next
	c.mu.Unlock()

	c.log.Info("blocklist cache refreshed", zap.Int("addresses", len(next)))

	return nil
}

// IsBlocked reports whether the address is banned. The input is normalized
// so IPv4-mapped and plain IPv4 forms match the same entry.
func (c *BlocklistCache) IsBlocked(address string) bool {
	normalized := domain.NormalizeAddress(address)

	c.mu.RLock()
	_, blocked := c.snapshot[normalized]
	c.mu.RUnlock()

	return blocked
}

// Ban writes the address to the store and refreshes the snapshot. Banning
// an already banned address is a no-op.
func (c *BlocklistCache) Ban(ctx context.Context, address, reason string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrAddressRequired
	}

	normalized := domain.NormalizeAddress(address)
	entry := domain.BlockedAddress{
		ID:      uuid.NewString(),
		Address: normalized,
		Reason:  reason,
		BanDate: c.now(),
	}

	if err := c.store.Insert(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return storeError("insert blocked address", err)
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}

	if c.publisher != nil {
		if err := c.publisher.PublishAddressBanned(ctx, domain.AddressBannedEvent{
			EventID:    uuid.NewString(),
			Address:    normalized,
			Reason:     reason,
			OccurredAt: entry.BanDate,
		}); err != nil {
			c.log.Warn("publish event", zap.Error(err))
		}
	}

	c.log.Info("address banned", zap.String("address", logger.MaskIP(normalized)))

	return nil
}

// Unban removes the address from the store and refreshes the snapshot.
func (c *BlocklistCache) Unban(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrAddressRequired
	}

	normalized := domain.NormalizeAddress(address)

	if err := c.store.Remove(ctx, normalized); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAddressNotBlocked
		}
		return storeError("remove blocked address", err)
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}

	if c.publisher != nil {
		if err := c.publisher.PublishAddressUnbanned(ctx, domain.AddressUnbannedEvent{
			EventID:    uuid.NewString(),
			Address:    normalized,
			OccurredAt: c.now(),
		}); err != nil {
			c.log.Warn("publish event", zap.Error(err))
		}
	}

	c.log.Info("address unbanned", zap.String("address", logger.MaskIP(normalized)))

	return nil
}

// ListBlocked returns the store's full blocklist, including ban reasons.
func (c *BlocklistCache) ListBlocked(ctx context.Context) ([]domain.BlockedAddress, error) {
	blocked, err := c.store.ListBlocked(ctx)
	if err != nil {
		return nil, storeError("list blocked addresses", err)
	}
	return blocked, nil
}
