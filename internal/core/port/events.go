package port

import (
	"context"

	"github.com/JLCarveth/blog/internal/core/domain"
)

// EventPublisher emits platform events for downstream consumers. Publishing
// is best-effort; callers must not fail a request because an event could not
// be delivered.
type EventPublisher interface {
	PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error
	PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error
	PublishLockoutEngaged(ctx context.Context, event domain.LockoutEngagedEvent) error
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishAddressBanned(ctx context.Context, event domain.AddressBannedEvent) error
	PublishAddressUnbanned(ctx context.Context, event domain.AddressUnbannedEvent) error
}
