package dto

import (
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CommandMeta carries the idempotency contract every mutating command shares.
type CommandMeta struct {
	IdempotencyKey string `json:"idempotencyKey" binding:"required,max=128"`
	// RequestHash is the caller-side hash of the semantic request body. When empty
	// the dispatcher hashes the command itself.
	RequestHash string `json:"-"`
}

func (m CommandMeta) Key() string  { return m.IdempotencyKey }
func (m CommandMeta) Hash() string { return m.RequestHash }

// EnrollCardCommand creates a client with an ACTIVE card, funded by the agent's cash.
type EnrollCardCommand struct {
	CommandMeta
	ClientName  string `json:"clientName" binding:"required,max=200"`
	ClientPhone string `json:"clientPhone" binding:"required,max=32"`
	CardUID     string `json:"cardUid" binding:"required,max=64"`
	PIN         string `json:"pin" binding:"required,numeric,min=4,max=8"`
}

// HashPayload drops the PIN from the idempotency request hash.
func (c EnrollCardCommand) HashPayload() any {
	c.PIN = ""
	return c
}

type PayByCardCommand struct {
	CommandMeta
	CardUID string       `json:"cardUid" binding:"required,max=64"`
	PIN     string       `json:"pin" binding:"required,numeric,min=4,max=8"`
	Amount  domain.Money `json:"amount" binding:"gt=0"`
}

// HashPayload drops the PIN from the idempotency request hash.
func (c PayByCardCommand) HashPayload() any {
	c.PIN = ""
	return c
}

type MerchantWithdrawCommand struct {
	CommandMeta
	MerchantID string       `json:"merchantID" binding:"required"`
	Amount     domain.Money `json:"amount" binding:"gt=0"`
}

type CashInCommand struct {
	CommandMeta
	ClientID string       `json:"clientID" binding:"required"`
	Amount   domain.Money `json:"amount" binding:"gt=0"`
}

type BankDepositCommand struct {
	CommandMeta
	AgentID       string       `json:"agentID" binding:"required"`
	Amount        domain.Money `json:"amount" binding:"gt=0"`
	BankReference string       `json:"bankReference" binding:"max=128"`
}

type RequestAgentPayoutCommand struct {
	CommandMeta
	AgentID string `json:"agentID" binding:"required"`
}

type CompleteAgentPayoutCommand struct {
	CommandMeta
	PayoutID string `json:"payoutID" binding:"required"`
}

type FailAgentPayoutCommand struct {
	CommandMeta
	PayoutID string `json:"payoutID" binding:"required"`
	Reason   string `json:"reason" binding:"required,max=500"`
}

type RequestClientRefundCommand struct {
	CommandMeta
	ClientID string `json:"clientID" binding:"required"`
}

type CompleteClientRefundCommand struct {
	CommandMeta
	RefundID string `json:"refundID" binding:"required"`
}

type FailClientRefundCommand struct {
	CommandMeta
	RefundID string `json:"refundID" binding:"required"`
	Reason   string `json:"reason" binding:"required,max=500"`
}

type ReversalCommand struct {
	CommandMeta
	TransactionID string `json:"transactionID" binding:"required"`
	Reason        string `json:"reason" binding:"max=500"`
}

type UpdateCardStatusCommand struct {
	CommandMeta
	CardID string            `json:"cardID" binding:"required"`
	Status domain.CardStatus `json:"status" binding:"required,oneof=BLOCKED LOST SUSPENDED"`
}

type UnblockCardCommand struct {
	CommandMeta
	CardID string `json:"cardID" binding:"required"`
}

type UpdateAccountStatusCommand struct {
	CommandMeta
	Account domain.AccountRef    `json:"account"`
	Status  domain.AccountStatus `json:"status" binding:"required,oneof=ACTIVE SUSPENDED CLOSED"`
}

type CreateAgentCommand struct {
	CommandMeta
	DisplayName string `json:"displayName" binding:"required,max=200"`
	Phone       string `json:"phone" binding:"required,max=32"`
}

type CreateMerchantCommand struct {
	CommandMeta
	DisplayName string `json:"displayName" binding:"required,max=200"`
	Phone       string `json:"phone" binding:"required,max=32"`
}

type UpsertFeeConfigCommand struct {
	CommandMeta
	FeeType    domain.FeeType  `json:"feeType" binding:"required,oneof=CARD_PAYMENT MERCHANT_WITHDRAWAL"`
	Rate       decimal.Decimal `json:"rate"`
	Min        domain.Money    `json:"min"`
	Max        domain.Money    `json:"max"`
	Refundable bool            `json:"refundable"`
}

type UpsertCommissionConfigCommand struct {
	CommandMeta
	CommissionType domain.CommissionType `json:"commissionType" binding:"required,oneof=MERCHANT_WITHDRAWAL CARD_ENROLLMENT"`
	Rate           decimal.Decimal       `json:"rate"`
	Min            domain.Money          `json:"min"`
	Max            domain.Money          `json:"max"`
	Refundable     bool                  `json:"refundable"`
}

type UpsertPlatformConfigCommand struct {
	CommandMeta
	CardEnrollmentPrice           domain.Money `json:"cardEnrollmentPrice" binding:"gt=0"`
	CardEnrollmentAgentCommission domain.Money `json:"cardEnrollmentAgentCommission" binding:"gte=0"`
	AgentCashLimitGlobal          domain.Money `json:"agentCashLimitGlobal" binding:"gte=0"`
	MaxFailedPINAttempts          int          `json:"maxFailedPinAttempts" binding:"min=1,max=20"`
}
