package domain

import (
	"fmt"
	"time"
)

// CardStatus is the lifecycle state of a payment card.
type CardStatus string

const (
	CardActive    CardStatus = "ACTIVE"
	CardBlocked   CardStatus = "BLOCKED"
	CardLost      CardStatus = "LOST"
	CardSuspended CardStatus = "SUSPENDED"
)

func (s CardStatus) Valid() bool {
	switch s {
	case CardActive, CardBlocked, CardLost, CardSuspended:
		return true
	}
	return false
}

// Card is a client's payment card. HashedPIN is never exposed.
type Card struct {
	CardID            string     `json:"cardID"`
	ClientID          string     `json:"clientID"`
	CardUID           string     `json:"cardUid"`
	HashedPIN         string     `json:"-"`
	Status            CardStatus `json:"status"`
	FailedPINAttempts int        `json:"failedPinAttempts"`
	AuditFields
}

// IsPayable reports whether the card may be used for a payment. A card at or
// above the attempt limit is treated as blocked even if nominally ACTIVE.
func (c Card) IsPayable(maxFailedPINAttempts int) bool {
	return c.Status == CardActive && c.FailedPINAttempts < maxFailedPINAttempts
}

// RecordFailedPIN increments the failed-attempt counter.
func (c *Card) RecordFailedPIN(now time.Time) {
	c.FailedPINAttempts++
	c.LastUpdatedAt = now
}

// ChangeStatus moves an ACTIVE card to BLOCKED, LOST or SUSPENDED, or between
// those states. Returning to ACTIVE goes through Unblock.
func (c *Card) ChangeStatus(next CardStatus, now time.Time, by string) error {
	if !next.Valid() {
		return fmt.Errorf("unknown card status %q", next)
	}
	if next == CardActive {
		return fmt.Errorf("card can only be reactivated by an admin unblock")
	}
	if c.Status == next {
		return fmt.Errorf("card is already %s", next)
	}
	c.Status = next
	c.LastUpdatedAt = now
	c.LastUpdatedBy = by
	return nil
}

// Unblock restores the card to ACTIVE and clears the failed-attempt counter.
func (c *Card) Unblock(now time.Time, by string) {
	c.Status = CardActive
	c.FailedPINAttempts = 0
	c.LastUpdatedAt = now
	c.LastUpdatedBy = by
}
