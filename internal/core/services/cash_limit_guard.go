package services

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/SscSPs/mobile_money_core/internal/core/policy"
)

// CashLimitGuard rejects operations that would push aggregate agent cash
// exposure over the configured global ceiling. Callers must hold the cash
// exposure lock, taken by LedgerService.Lock, before calling Check.
type CashLimitGuard struct {
	BaseService
	ledger *LedgerService
	config *ConfigService
}

func NewCashLimitGuard(ledger *LedgerService, config *ConfigService) *CashLimitGuard {
	return &CashLimitGuard{ledger: ledger, config: config}
}

// Check passes when delta does not increase exposure or exposure+delta stays within the limit.
func (g *CashLimitGuard) Check(ctx context.Context, delta domain.Money) error {
	if !delta.IsPositive() {
		return nil
	}
	cfg, err := g.config.GetPlatformConfig(ctx)
	if err != nil {
		return err
	}
	exposure, err := g.ledger.AgentCashExposure(ctx)
	if err != nil {
		return err
	}
	if policy.CashLimitBreached(exposure, delta, cfg.AgentCashLimitGlobal) {
		g.GetLogger(ctx).Warn("Agent cash limit would be exceeded",
			"exposure", exposure.String(),
			"delta", delta.String(),
			"limit", cfg.AgentCashLimitGlobal.String(),
		)
		return apperrors.Forbiddenf("agent cash limit exceeded: exposure %s + %s > %s", exposure, delta, cfg.AgentCashLimitGlobal)
	}
	return nil
}
