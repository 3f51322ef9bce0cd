package services

import (
	"context"
	"encoding/json"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
)

// OutboxAuditPort appends audit events to the transactional outbox, so an event
// commits or rolls back with the command that produced it.
type OutboxAuditPort struct {
	outboxRepo portsrepo.AuditOutboxRepositoryFacade
}

func NewOutboxAuditPort(outboxRepo portsrepo.AuditOutboxRepositoryFacade) *OutboxAuditPort {
	return &OutboxAuditPort{outboxRepo: outboxRepo}
}

var _ portssvc.AuditPort = (*OutboxAuditPort)(nil)

func (p *OutboxAuditPort) Publish(ctx context.Context, event domain.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return apperrors.Technical("failed to encode audit event", err)
	}
	return p.outboxRepo.Append(ctx, domain.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.Action,
		PartitionKey: string(event.ActorType) + ":" + event.ActorID,
		Payload:      payload,
		CreatedAt:    event.OccurredAt,
	})
}
