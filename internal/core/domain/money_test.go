package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"-1.005", "-1.01"},
		{"2", "2.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := domain.NewMoney(decimal.RequireFromString(tt.in))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestMoney_EqualityIsScaleNormalized(t *testing.T) {
	a := domain.NewMoney(decimal.RequireFromString("10.5"))
	b := domain.MustParseMoney("10.50")
	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.Cmp(b))
}

func TestParseMoney_RejectsExtraScale(t *testing.T) {
	_, err := domain.ParseMoney("10.001")
	assert.Error(t, err)

	m, err := domain.ParseMoney("10.100")
	require.NoError(t, err)
	assert.Equal(t, "10.10", m.String())
}

func TestMoney_MulRateAndClamp(t *testing.T) {
	fee := domain.MustParseMoney("1000.00").MulRate(decimal.RequireFromString("0.02"))
	assert.Equal(t, "20.00", fee.String())

	clamped := fee.Clamp(domain.MustParseMoney("25.00"), domain.MustParseMoney("30.00"))
	assert.Equal(t, "25.00", clamped.String())
}

func TestMoney_JSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		Amount domain.Money `json:"amount"`
	}{domain.MustParseMoney("1020")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1020.00"}`, string(raw))

	var in struct {
		Amount domain.Money `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":12.5}`), &in))
	assert.Equal(t, "12.50", in.Amount.String())

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1.234"}`), &in))
}

func TestMoney_ZeroValue(t *testing.T) {
	var m domain.Money
	assert.True(t, m.IsZero())
	assert.Equal(t, "5.00", m.Add(domain.MustParseMoney("5")).String())
}
