package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/infra/config"
	"github.com/JLCarveth/blog/internal/infra/logger"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, log *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: log}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishLoginSucceeded publishes blog.auth.login_succeeded events.
// Identifiers are masked before they leave the process.
func (p *EventPublisher) PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error {
	payload := struct {
		AccountID     string    `json:"account_id"`
		Email         string    `json:"email"`
		Role          string    `json:"role"`
		ClientAddress string    `json:"client_address"`
		OccurredAt    time.Time `json:"occurred_at"`
	}{
		AccountID:     event.AccountID,
		Email:         logger.MaskEmail(event.Email),
		Role:          event.Role,
		ClientAddress: logger.MaskIP(event.ClientAddress),
		OccurredAt:    event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "blog.auth.login_succeeded", event.OccurredAt, payload)
}

// PublishLoginFailed publishes blog.auth.login_failed events.
func (p *EventPublisher) PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error {
	payload := struct {
		Email         string    `json:"email"`
		ClientAddress string    `json:"client_address"`
		OccurredAt    time.Time `json:"occurred_at"`
	}{
		Email:         logger.MaskEmail(event.Email),
		ClientAddress: logger.MaskIP(event.ClientAddress),
		OccurredAt:    event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "blog.auth.login_failed", event.OccurredAt, payload)
}

// PublishLockoutEngaged publishes blog.auth.lockout_engaged events.
func (p *EventPublisher) PublishLockoutEngaged(ctx context.Context, event domain.LockoutEngagedEvent) error {
	payload := struct {
		ClientAddress string    `json:"client_address"`
		Attempts      int       `json:"attempts"`
		OccurredAt    time.Time `json:"occurred_at"`
	}{
		ClientAddress: logger.MaskIP(event.ClientAddress),
		Attempts:      event.Attempts,
		OccurredAt:    event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "blog.auth.lockout_engaged", event.OccurredAt, payload)
}

// PublishAccountRegistered publishes blog.account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		AccountID  string    `json:"account_id"`
		Email      string    `json:"email"`
		Username   string    `json:"username"`
		Role       string    `json:"role"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		AccountID:  event.AccountID,
		Email:      logger.MaskEmail(event.Email),
		Username:   event.Username,
		Role:       event.Role,
		OccurredAt: event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "blog.account.registered", event.OccurredAt, payload)
}

// PublishAddressBanned publishes blog.blocklist.banned events.
func (p *EventPublisher) PublishAddressBanned(ctx context.Context, event domain.AddressBannedEvent) error {
	payload := struct {
		Address    string    `json:"address"`
		Reason     string    `json:"reason,omitempty"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		Address:    event.Address,
		Reason:     event.Reason,
		OccurredAt: event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "blog.blocklist.banned", event.OccurredAt, payload)
}

// PublishAddressUnbanned publishes blog.blocklist.unbanned events.
func (p *EventPublisher) PublishAddressUnbanned(ctx context.Context, event domain.AddressUnbannedEvent) error {
	payload := struct {
		Address    string    `json:"address"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		Address:    event.Address,
		OccurredAt: event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "blog.blocklist.unbanned", event.OccurredAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
