package services

import (
	"context"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/SscSPs/mobile_money_core/internal/core/policy"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
)

// PaymentService charges a client's card on behalf of a merchant.
type PaymentService struct {
	BaseService
	dispatcher *Dispatcher
	txManager  portsrepo.TransactionManager
	ledger     *LedgerService
	config     *ConfigService
	security   portssvc.CardSecurityPolicy
	cardRepo   portsrepo.CardRepositoryFacade
	partyRepo  portsrepo.PartyRepositoryFacade
	pinHasher  portssvc.PinHasher
}

func NewPaymentService(
	dispatcher *Dispatcher,
	txManager portsrepo.TransactionManager,
	ledger *LedgerService,
	config *ConfigService,
	security portssvc.CardSecurityPolicy,
	cardRepo portsrepo.CardRepositoryFacade,
	partyRepo portsrepo.PartyRepositoryFacade,
	pinHasher portssvc.PinHasher,
) *PaymentService {
	return &PaymentService{
		dispatcher: dispatcher,
		txManager:  txManager,
		ledger:     ledger,
		config:     config,
		security:   security,
		cardRepo:   cardRepo,
		partyRepo:  partyRepo,
		pinHasher:  pinHasher,
	}
}

var _ portssvc.PaymentSvcFacade = (*PaymentService)(nil)

func (s *PaymentService) PayByCard(ctx context.Context, actor domain.Actor, cmd dto.PayByCardCommand) (*dto.CardPaymentResult, error) {
	if err := s.Authorize(actor, domain.ActorMerchant); err != nil {
		return nil, err
	}
	merchantID := actor.ID

	return dispatch(ctx, s.dispatcher, command[dto.CardPaymentResult]{
		actor:      actor,
		action:     "CARD_PAYMENT",
		resultType: dto.ResultCardPayment,
		payload:    cmd,
		precheck: func(ctx context.Context) error {
			return s.verifyPIN(ctx, cmd.CardUID, cmd.PIN)
		},
		execute: func(ctx context.Context) (*dto.CardPaymentResult, map[string]string, error) {
			if _, err := s.partyRepo.FindMerchantByID(ctx, merchantID); err != nil {
				return nil, nil, notFoundAsForbidden(err, "merchant is not registered")
			}

			card, err := s.payableCard(ctx, cmd.CardUID)
			if err != nil {
				return nil, nil, err
			}

			feeCfg, err := s.config.GetFeeConfig(ctx, domain.FeeCardPayment)
			if err != nil {
				return nil, nil, err
			}
			fee := policy.Fee(cmd.Amount, feeCfg.RateSchedule)
			total := cmd.Amount.Add(fee)

			client := domain.ClientAccount(card.ClientID)
			merchant := domain.MerchantAccount(merchantID)
			platform := domain.PlatformAccount(domain.AccountPlatform)

			profiles, err := s.ledger.Lock(ctx, client, merchant, platform)
			if err != nil {
				return nil, nil, notFoundAsForbidden(err, "payment accounts are not provisioned")
			}
			if err := requireActive(profiles, client, merchant); err != nil {
				return nil, nil, err
			}

			balance, err := s.ledger.NetBalance(ctx, client)
			if err != nil {
				return nil, nil, err
			}
			if balance.LessThan(total) {
				return nil, nil, apperrors.InsufficientFundsf("client balance %s is below %s", balance, total)
			}

			p := &posting{}
			p.debit(client, cmd.Amount, domain.LegPrincipal).
				debit(client, fee, domain.LegFee).
				credit(merchant, cmd.Amount, domain.LegPrincipal).
				credit(platform, fee, domain.LegFee)

			txn := s.ledger.newTransaction(domain.TxnCardPayment, cmd.Amount, actor)
			if _, err := s.ledger.Post(ctx, txn, p.entries); err != nil {
				return nil, nil, err
			}

			return &dto.CardPaymentResult{
					TransactionID: txn.TransactionID,
					CardID:        card.CardID,
					ClientID:      card.ClientID,
					MerchantID:    merchantID,
					Amount:        cmd.Amount,
					Fee:           fee,
				}, map[string]string{
					"transactionId": txn.TransactionID,
					"cardId":        card.CardID,
					"clientId":      card.ClientID,
					"merchantId":    merchantID,
					"amount":        cmd.Amount.String(),
					"fee":           fee.String(),
				}, nil
		},
	})
}

// verifyPIN checks the PIN in its own unit of work so a failed attempt is
// recorded even though the payment itself is rejected.
func (s *PaymentService) verifyPIN(ctx context.Context, cardUID, pin string) error {
	rejected := false
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		card, err := s.payableCard(ctx, cardUID)
		if err != nil {
			return err
		}
		if s.pinHasher.Verify(pin, card.HashedPIN) {
			return nil
		}
		card.RecordFailedPIN(s.Now())
		if err := s.cardRepo.UpdateCard(ctx, *card); err != nil {
			return err
		}
		rejected = true
		return nil
	})
	if err != nil {
		return err
	}
	if rejected {
		s.GetLogger(ctx).Warn("PIN mismatch recorded", "card_uid", cardUID)
		return apperrors.Forbiddenf("invalid PIN")
	}
	return nil
}

// payableCard locks the card and rejects it unless it is ACTIVE and under the PIN attempt limit.
func (s *PaymentService) payableCard(ctx context.Context, cardUID string) (*domain.Card, error) {
	card, err := s.cardRepo.LockCardByUID(ctx, cardUID)
	if err != nil {
		return nil, notFoundAsForbidden(err, "card is not accepted")
	}
	maxAttempts, err := s.security.MaxFailedPINAttempts(ctx)
	if err != nil {
		return nil, err
	}
	if !card.IsPayable(maxAttempts) {
		return nil, apperrors.Forbiddenf("card is not accepted")
	}
	return card, nil
}
