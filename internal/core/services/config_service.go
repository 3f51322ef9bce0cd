package services

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
)

// ConfigService reads and upserts fee, commission and platform configuration.
// Reads always go to the repository; nothing is cached across commands.
type ConfigService struct {
	BaseService
	configRepo portsrepo.ConfigRepositoryFacade
	dispatcher *Dispatcher
}

func NewConfigService(configRepo portsrepo.ConfigRepositoryFacade, dispatcher *Dispatcher) *ConfigService {
	return &ConfigService{configRepo: configRepo, dispatcher: dispatcher}
}

var (
	_ portssvc.ConfigSvcFacade    = (*ConfigService)(nil)
	_ portssvc.CardSecurityPolicy = (*ConfigService)(nil)
)

func (s *ConfigService) GetFeeConfig(ctx context.Context, feeType domain.FeeType) (*domain.FeeConfig, error) {
	if !feeType.Valid() {
		return nil, apperrors.Validationf("unknown fee type %q", feeType)
	}
	return s.configRepo.GetFeeConfig(ctx, feeType)
}

func (s *ConfigService) GetCommissionConfig(ctx context.Context, commissionType domain.CommissionType) (*domain.CommissionConfig, error) {
	if !commissionType.Valid() {
		return nil, apperrors.Validationf("unknown commission type %q", commissionType)
	}
	return s.configRepo.GetCommissionConfig(ctx, commissionType)
}

func (s *ConfigService) GetPlatformConfig(ctx context.Context) (*domain.PlatformConfig, error) {
	return s.configRepo.GetPlatformConfig(ctx)
}

// MaxFailedPINAttempts implements the card security policy port.
func (s *ConfigService) MaxFailedPINAttempts(ctx context.Context) (int, error) {
	cfg, err := s.configRepo.GetPlatformConfig(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.MaxFailedPINAttempts, nil
}

func (s *ConfigService) UpsertFeeConfig(ctx context.Context, actor domain.Actor, cmd dto.UpsertFeeConfigCommand) (*domain.FeeConfig, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[domain.FeeConfig]{
		actor:      actor,
		action:     "FEE_CONFIG_UPSERTED",
		resultType: dto.ResultFeeConfig,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.FeeConfig, map[string]string, error) {
			cfg := domain.FeeConfig{
				FeeType:       cmd.FeeType,
				RateSchedule:  domain.RateSchedule{Rate: cmd.Rate, Min: cmd.Min, Max: cmd.Max},
				Refundable:    cmd.Refundable,
				LastUpdatedAt: s.Now(),
				LastUpdatedBy: actor.ID,
			}
			if !cfg.FeeType.Valid() {
				return nil, nil, apperrors.Validationf("unknown fee type %q", cfg.FeeType)
			}
			if err := cfg.Validate(); err != nil {
				return nil, nil, apperrors.Validationf("invalid fee config: %v", err)
			}
			if err := s.configRepo.UpsertFeeConfig(ctx, cfg); err != nil {
				return nil, nil, err
			}
			return &cfg, map[string]string{
				"feeType":    string(cfg.FeeType),
				"rate":       cfg.Rate.String(),
				"min":        cfg.Min.String(),
				"max":        cfg.Max.String(),
				"refundable": boolString(cfg.Refundable),
			}, nil
		},
	})
}

func (s *ConfigService) UpsertCommissionConfig(ctx context.Context, actor domain.Actor, cmd dto.UpsertCommissionConfigCommand) (*domain.CommissionConfig, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[domain.CommissionConfig]{
		actor:      actor,
		action:     "COMMISSION_CONFIG_UPSERTED",
		resultType: dto.ResultCommissionConfig,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.CommissionConfig, map[string]string, error) {
			cfg := domain.CommissionConfig{
				CommissionType: cmd.CommissionType,
				RateSchedule:   domain.RateSchedule{Rate: cmd.Rate, Min: cmd.Min, Max: cmd.Max},
				Refundable:     cmd.Refundable,
				LastUpdatedAt:  s.Now(),
				LastUpdatedBy:  actor.ID,
			}
			if !cfg.CommissionType.Valid() {
				return nil, nil, apperrors.Validationf("unknown commission type %q", cfg.CommissionType)
			}
			if err := cfg.Validate(); err != nil {
				return nil, nil, apperrors.Validationf("invalid commission config: %v", err)
			}
			if err := s.configRepo.UpsertCommissionConfig(ctx, cfg); err != nil {
				return nil, nil, err
			}
			return &cfg, map[string]string{
				"commissionType": string(cfg.CommissionType),
				"rate":           cfg.Rate.String(),
				"min":            cfg.Min.String(),
				"max":            cfg.Max.String(),
				"refundable":     boolString(cfg.Refundable),
			}, nil
		},
	})
}

func (s *ConfigService) UpsertPlatformConfig(ctx context.Context, actor domain.Actor, cmd dto.UpsertPlatformConfigCommand) (*domain.PlatformConfig, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[domain.PlatformConfig]{
		actor:      actor,
		action:     "PLATFORM_CONFIG_UPSERTED",
		resultType: dto.ResultPlatformConfig,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.PlatformConfig, map[string]string, error) {
			cfg := domain.PlatformConfig{
				CardEnrollmentPrice:           cmd.CardEnrollmentPrice,
				CardEnrollmentAgentCommission: cmd.CardEnrollmentAgentCommission,
				AgentCashLimitGlobal:          cmd.AgentCashLimitGlobal,
				MaxFailedPINAttempts:          cmd.MaxFailedPINAttempts,
				LastUpdatedAt:                 s.Now(),
				LastUpdatedBy:                 actor.ID,
			}
			if err := cfg.Validate(); err != nil {
				return nil, nil, apperrors.Validationf("invalid platform config: %v", err)
			}
			if err := s.configRepo.UpsertPlatformConfig(ctx, cfg); err != nil {
				return nil, nil, err
			}
			return &cfg, map[string]string{
				"cardEnrollmentPrice":           cfg.CardEnrollmentPrice.String(),
				"cardEnrollmentAgentCommission": cfg.CardEnrollmentAgentCommission.String(),
				"agentCashLimitGlobal":          cfg.AgentCashLimitGlobal.String(),
				"maxFailedPinAttempts":          itoa(cfg.MaxFailedPINAttempts),
			}, nil
		},
	})
}
