package domain

import (
	"fmt"
	"time"
)

// SettlementStatus is shared by payouts and client refunds.
type SettlementStatus string

const (
	SettlementRequested SettlementStatus = "REQUESTED"
	SettlementCompleted SettlementStatus = "COMPLETED"
	SettlementFailed    SettlementStatus = "FAILED"
)

func (s SettlementStatus) IsTerminal() bool {
	return s == SettlementCompleted || s == SettlementFailed
}

// Settlement is the lifecycle common to Payout and ClientRefund.
// TransactionID is the request posting; finalize postings are recorded separately.
type Settlement struct {
	TransactionID         string           `json:"transactionID"`
	FinalizeTransactionID *string          `json:"finalizeTransactionID,omitempty"`
	Amount                Money            `json:"amount"`
	Status                SettlementStatus `json:"status"`
	CreatedAt             time.Time        `json:"createdAt"`
	CompletedAt           *time.Time       `json:"completedAt,omitempty"`
	FailedAt              *time.Time       `json:"failedAt,omitempty"`
	FailureReason         *string          `json:"failureReason,omitempty"`
}

// Complete moves REQUESTED to COMPLETED.
func (s *Settlement) Complete(finalizeTxnID string, now time.Time) error {
	if s.Status != SettlementRequested {
		return fmt.Errorf("cannot complete from %s", s.Status)
	}
	s.Status = SettlementCompleted
	s.FinalizeTransactionID = &finalizeTxnID
	s.CompletedAt = &now
	return nil
}

// Fail moves REQUESTED to FAILED.
func (s *Settlement) Fail(finalizeTxnID, reason string, now time.Time) error {
	if s.Status != SettlementRequested {
		return fmt.Errorf("cannot fail from %s", s.Status)
	}
	s.Status = SettlementFailed
	s.FinalizeTransactionID = &finalizeTxnID
	s.FailedAt = &now
	s.FailureReason = &reason
	return nil
}

// Payout settles an agent's wallet balance to the bank.
type Payout struct {
	PayoutID string `json:"payoutID"`
	AgentID  string `json:"agentID"`
	Settlement
}

// ClientRefund returns a client's full wallet balance.
type ClientRefund struct {
	RefundID string `json:"refundID"`
	ClientID string `json:"clientID"`
	Settlement
}
