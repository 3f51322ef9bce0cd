package domain

import (
	"encoding/json"
	"time"
)

// IdempotencyRecord caches the result of the first successful execution of a key. Write-once.
type IdempotencyRecord struct {
	IdempotencyKey string          `json:"idempotencyKey"`
	RequestHash    string          `json:"requestHash"`
	ResultType     string          `json:"resultType"`
	ResultJSON     json.RawMessage `json:"resultJson"`
	CreatedAt      time.Time       `json:"createdAt"`
	ExpiresAt      *time.Time      `json:"expiresAt,omitempty"`
}

// AuditEvent is emitted once per successful mutating command.
type AuditEvent struct {
	EventID    string            `json:"eventID"`
	ActorType  ActorType         `json:"actorType"`
	ActorID    string            `json:"actorId"`
	Action     string            `json:"action"`
	OccurredAt time.Time         `json:"occurredAt"`
	Metadata   map[string]string `json:"metadata"`
}

// OutboxRecord is an audit event waiting to be shipped downstream.
type OutboxRecord struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	Attempts     int
	LastError    *string
	CreatedAt    time.Time
	PublishedAt  *time.Time
}
