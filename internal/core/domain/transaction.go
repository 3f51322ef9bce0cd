package domain

import "time"

// EntryType indicates whether a ledger entry is a Debit or a Credit.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// Opposite swaps DEBIT and CREDIT.
func (t EntryType) Opposite() EntryType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// Leg tags the economic component an entry belongs to.
// Reversals use it to honor fee and commission refundability.
type Leg string

const (
	LegPrincipal  Leg = "PRINCIPAL"
	LegFee        Leg = "FEE"
	LegCommission Leg = "COMMISSION"
)

// LedgerEntry is an immutable posting against one account.
type LedgerEntry struct {
	EntryID       string     `json:"entryID"`
	TransactionID string     `json:"transactionID"`
	Account       AccountRef `json:"account"`
	EntryType     EntryType  `json:"entryType"`
	Amount        Money      `json:"amount"`
	Leg           Leg        `json:"leg"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// SignedAmount is the entry's effect on the account's net balance (credits positive).
func (e LedgerEntry) SignedAmount() Money {
	if e.EntryType == Credit {
		return e.Amount
	}
	return e.Amount.Neg()
}

// TransactionType names the business event a transaction records.
type TransactionType string

const (
	TxnCardEnrollment         TransactionType = "CARD_ENROLLMENT"
	TxnCardPayment            TransactionType = "CARD_PAYMENT"
	TxnMerchantWithdrawal     TransactionType = "MERCHANT_WITHDRAWAL"
	TxnAgentCashIn            TransactionType = "AGENT_CASH_IN"
	TxnAgentBankDeposit       TransactionType = "AGENT_BANK_DEPOSIT"
	TxnAgentPayoutRequest     TransactionType = "AGENT_PAYOUT_REQUEST"
	TxnAgentPayoutCompletion  TransactionType = "AGENT_PAYOUT_COMPLETION"
	TxnAgentPayoutFailure     TransactionType = "AGENT_PAYOUT_FAILURE"
	TxnClientRefundRequest    TransactionType = "CLIENT_REFUND_REQUEST"
	TxnClientRefundCompletion TransactionType = "CLIENT_REFUND_COMPLETION"
	TxnClientRefundFailure    TransactionType = "CLIENT_REFUND_FAILURE"
	TxnReversal               TransactionType = "REVERSAL"
)

// IsSettlementLifecycle reports whether t belongs to a payout or refund lifecycle.
// Those compensate through their Fail command, never through a reversal.
func (t TransactionType) IsSettlementLifecycle() bool {
	switch t {
	case TxnAgentPayoutRequest, TxnAgentPayoutCompletion, TxnAgentPayoutFailure,
		TxnClientRefundRequest, TxnClientRefundCompletion, TxnClientRefundFailure:
		return true
	}
	return false
}

// Transaction is an immutable business event grouping a balanced set of entries.
type Transaction struct {
	TransactionID         string          `json:"transactionID"`
	Type                  TransactionType `json:"type"`
	Amount                Money           `json:"amount"`
	CreatedAt             time.Time       `json:"createdAt"`
	OriginalTransactionID *string         `json:"originalTransactionID,omitempty"`
	InitiatedByType       ActorType       `json:"initiatedByType"`
	InitiatedBy           string          `json:"initiatedBy"`
}

// EntryTotals sums debits and credits of a batch.
func EntryTotals(entries []LedgerEntry) (debits, credits Money) {
	for _, e := range entries {
		if e.EntryType == Debit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}
