// Package policy holds the pure fee and commission arithmetic.
package policy

import "github.com/SscSPs/mobile_money_core/internal/core/domain"

// Fee is clamp(round(amount*rate, 2, HALF_UP), min, max).
func Fee(amount domain.Money, schedule domain.RateSchedule) domain.Money {
	return amount.MulRate(schedule.Rate).Clamp(schedule.Min, schedule.Max)
}

// Commission is computed on the fee it is carved from, like Fee, and never exceeds that fee.
func Commission(fee domain.Money, schedule domain.RateSchedule) domain.Money {
	return domain.MinMoney(Fee(fee, schedule), fee)
}

// EnrollmentSplit returns the platform share and the agent commission of a card enrollment.
// Both are flat configured values; the commission is bounded by the price.
func EnrollmentSplit(cfg domain.PlatformConfig) (platformShare, agentCommission domain.Money) {
	agentCommission = domain.MinMoney(cfg.CardEnrollmentAgentCommission, cfg.CardEnrollmentPrice)
	return cfg.CardEnrollmentPrice.Sub(agentCommission), agentCommission
}

// CashLimitBreached reports whether adding delta to the current exposure would exceed limit.
// Deltas that do not increase exposure never breach.
func CashLimitBreached(exposure, delta, limit domain.Money) bool {
	if !delta.IsPositive() {
		return false
	}
	return exposure.Add(delta).GreaterThan(limit)
}
