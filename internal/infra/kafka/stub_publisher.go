package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
)

// StubPublisher satisfies port.EventPublisher without a broker. Used when
// Kafka brokers are not configured (local development, tests).
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a publisher that only logs events.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &StubPublisher{logger: log}
}

func (s *StubPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	s.logger.Debug("event dropped (no broker)", zap.String("type", "blog.auth.login_succeeded"))
	return nil
}

func (s *StubPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	s.logger.Debug("event dropped (no broker)", zap.String("type", "blog.auth.login_failed"))
	return nil
}

func (s *StubPublisher) PublishLockoutEngaged(_ context.Context, event domain.LockoutEngagedEvent) error {
	s.logger.Debug("event dropped (no broker)", zap.String("type", "blog.auth.lockout_engaged"))
	return nil
}

func (s *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	s.logger.Debug("event dropped (no broker)", zap.String("type", "blog.account.registered"))
	return nil
}

func (s *StubPublisher) PublishAddressBanned(_ context.Context, event domain.AddressBannedEvent) error {
	s.logger.Debug("event dropped (no broker)", zap.String("type", "blog.blocklist.banned"))
	return nil
}

func (s *StubPublisher) PublishAddressUnbanned(_ context.Context, event domain.AddressUnbannedEvent) error {
	s.logger.Debug("event dropped (no broker)", zap.String("type", "blog.blocklist.unbanned"))
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
