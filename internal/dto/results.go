package dto

import "github.com/SscSPs/mobile_money_core/internal/core/domain"

// Result type names recorded with cached idempotent results.
const (
	ResultCardEnrollment   = "CardEnrollmentResult"
	ResultCardPayment      = "CardPaymentResult"
	ResultWithdrawal       = "WithdrawalResult"
	ResultPosting          = "PostingResult"
	ResultPayout           = "PayoutResult"
	ResultClientRefund     = "ClientRefundResult"
	ResultReversal         = "ReversalResult"
	ResultCard             = "CardResult"
	ResultAccountProfile   = "AccountProfileResult"
	ResultAgent            = "AgentResult"
	ResultMerchant         = "MerchantResult"
	ResultFeeConfig        = "FeeConfigResult"
	ResultCommissionConfig = "CommissionConfigResult"
	ResultPlatformConfig   = "PlatformConfigResult"
)

type CardEnrollmentResult struct {
	TransactionID   string       `json:"transactionID"`
	ClientID        string       `json:"clientID"`
	CardID          string       `json:"cardID"`
	Price           domain.Money `json:"price"`
	PlatformShare   domain.Money `json:"platformShare"`
	AgentCommission domain.Money `json:"agentCommission"`
}

type CardPaymentResult struct {
	TransactionID string       `json:"transactionID"`
	CardID        string       `json:"cardID"`
	ClientID      string       `json:"clientID"`
	MerchantID    string       `json:"merchantID"`
	Amount        domain.Money `json:"amount"`
	Fee           domain.Money `json:"fee"`
}

type WithdrawalResult struct {
	TransactionID string       `json:"transactionID"`
	MerchantID    string       `json:"merchantID"`
	AgentID       string       `json:"agentID"`
	Amount        domain.Money `json:"amount"`
	Fee           domain.Money `json:"fee"`
	Commission    domain.Money `json:"commission"`
}

// PostingResult is returned by commands whose only effect is one posting.
type PostingResult struct {
	TransactionID string                 `json:"transactionID"`
	Type          domain.TransactionType `json:"type"`
	Amount        domain.Money           `json:"amount"`
}

type ReversalResult struct {
	TransactionID         string               `json:"transactionID"`
	OriginalTransactionID string               `json:"originalTransactionID"`
	Entries               []domain.LedgerEntry `json:"entries"`
}

type AgentResult struct {
	Agent    domain.Agent            `json:"agent"`
	Accounts []domain.AccountProfile `json:"accounts"`
}

type MerchantResult struct {
	Merchant domain.Merchant         `json:"merchant"`
	Accounts []domain.AccountProfile `json:"accounts"`
}

type BalanceResult struct {
	Account domain.AccountRef `json:"account"`
	Balance domain.Money      `json:"balance"`
}

type ListEntriesResponse struct {
	Entries   []domain.LedgerEntry `json:"entries"`
	NextToken *string              `json:"nextToken,omitempty"`
}

// ListEntriesParams defines parameters for paging an account statement.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=50" binding:"min=1,max=200"`
	NextToken *string `form:"nextToken"`
}
