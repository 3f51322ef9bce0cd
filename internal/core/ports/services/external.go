package services

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
)

// PinHasher hashes and verifies card PINs.
type PinHasher interface {
	Hash(pin string) (string, error)
	Verify(pin, hashed string) bool
}

// AuditPort receives exactly one event per successful mutating command.
// Implementations must take part in the caller's unit of work.
type AuditPort interface {
	Publish(ctx context.Context, event domain.AuditEvent) error
}

// CardSecurityPolicy exposes the PIN lockout threshold.
type CardSecurityPolicy interface {
	MaxFailedPINAttempts(ctx context.Context) (int, error)
}

// EventPublisher ships a committed audit outbox record to a downstream sink.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, partitionKey string, payload []byte) error
	Close() error
}
