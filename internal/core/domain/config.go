package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FeeType keys a fee configuration row.
type FeeType string

const (
	FeeCardPayment        FeeType = "CARD_PAYMENT"
	FeeMerchantWithdrawal FeeType = "MERCHANT_WITHDRAWAL"
)

func (t FeeType) Valid() bool {
	return t == FeeCardPayment || t == FeeMerchantWithdrawal
}

// CommissionType keys a commission configuration row.
type CommissionType string

const (
	CommissionMerchantWithdrawal CommissionType = "MERCHANT_WITHDRAWAL"
	CommissionCardEnrollment     CommissionType = "CARD_ENROLLMENT"
)

func (t CommissionType) Valid() bool {
	return t == CommissionMerchantWithdrawal || t == CommissionCardEnrollment
}

// RateSchedule is a rate bounded by a minimum and a maximum amount.
type RateSchedule struct {
	Rate decimal.Decimal `json:"rate"`
	Min  Money           `json:"min"`
	Max  Money           `json:"max"`
}

func (r RateSchedule) Validate() error {
	if r.Rate.IsNegative() || r.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("rate must be within [0, 1]")
	}
	if r.Min.IsNegative() || r.Max.IsNegative() {
		return fmt.Errorf("min and max must not be negative")
	}
	if r.Min.GreaterThan(r.Max) {
		return fmt.Errorf("min must not exceed max")
	}
	return nil
}

type FeeConfig struct {
	FeeType FeeType `json:"feeType"`
	RateSchedule
	Refundable    bool      `json:"refundable"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

type CommissionConfig struct {
	CommissionType CommissionType `json:"commissionType"`
	RateSchedule
	Refundable    bool      `json:"refundable"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// PlatformConfig is the singleton of flat platform settings.
type PlatformConfig struct {
	CardEnrollmentPrice           Money     `json:"cardEnrollmentPrice"`
	CardEnrollmentAgentCommission Money     `json:"cardEnrollmentAgentCommission"`
	AgentCashLimitGlobal          Money     `json:"agentCashLimitGlobal"`
	MaxFailedPINAttempts          int       `json:"maxFailedPinAttempts"`
	LastUpdatedAt                 time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy                 string    `json:"lastUpdatedBy"`
}

func (c PlatformConfig) Validate() error {
	if !c.CardEnrollmentPrice.IsPositive() {
		return fmt.Errorf("card enrollment price must be positive")
	}
	if c.CardEnrollmentAgentCommission.IsNegative() || c.CardEnrollmentAgentCommission.GreaterThan(c.CardEnrollmentPrice) {
		return fmt.Errorf("card enrollment commission must be within [0, price]")
	}
	if c.AgentCashLimitGlobal.IsNegative() {
		return fmt.Errorf("agent cash limit must not be negative")
	}
	if c.MaxFailedPINAttempts < 1 {
		return fmt.Errorf("max failed pin attempts must be at least 1")
	}
	return nil
}
