package policy_test

import (
	"testing"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/SscSPs/mobile_money_core/internal/core/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func schedule(rate, min, max string) domain.RateSchedule {
	return domain.RateSchedule{
		Rate: decimal.RequireFromString(rate),
		Min:  domain.MustParseMoney(min),
		Max:  domain.MustParseMoney(max),
	}
}

func TestFee(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		schedule domain.RateSchedule
		want     string
	}{
		{"rate applies inside bounds", "1000.00", schedule("0.02", "10", "500"), "20.00"},
		{"min applies", "100.00", schedule("0.02", "10", "500"), "10.00"},
		{"max applies", "100000.00", schedule("0.02", "10", "500"), "500.00"},
		{"half up rounding", "0.25", schedule("0.1", "0", "100"), "0.03"},
		{"zero rate", "1000.00", schedule("0", "0", "0"), "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Fee(domain.MustParseMoney(tt.amount), tt.schedule)
			assert.True(t, domain.MustParseMoney(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestCommission_NeverExceedsFee(t *testing.T) {
	fee := domain.MustParseMoney("5.00")
	got := policy.Commission(fee, schedule("0.5", "10", "100"))
	assert.Equal(t, "5.00", got.String())

	got = policy.Commission(domain.MustParseMoney("40.00"), schedule("0.25", "0", "100"))
	assert.Equal(t, "10.00", got.String())
}

func TestEnrollmentSplit(t *testing.T) {
	platform, agent := policy.EnrollmentSplit(domain.PlatformConfig{
		CardEnrollmentPrice:           domain.MustParseMoney("500.00"),
		CardEnrollmentAgentCommission: domain.MustParseMoney("200.00"),
	})
	assert.Equal(t, "300.00", platform.String())
	assert.Equal(t, "200.00", agent.String())
}

func TestCashLimitBreached(t *testing.T) {
	limit := domain.MustParseMoney("1000.00")
	assert.False(t, policy.CashLimitBreached(domain.MustParseMoney("900.00"), domain.MustParseMoney("100.00"), limit))
	assert.True(t, policy.CashLimitBreached(domain.MustParseMoney("900.00"), domain.MustParseMoney("100.01"), limit))
	assert.False(t, policy.CashLimitBreached(domain.MustParseMoney("5000.00"), domain.MustParseMoney("-100.00"), limit))
}
