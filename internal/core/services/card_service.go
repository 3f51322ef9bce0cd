package services

import (
	"context"
	"errors"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/SscSPs/mobile_money_core/internal/core/policy"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
)

// CardService enrolls clients with cards and drives the card state machine.
type CardService struct {
	BaseService
	dispatcher *Dispatcher
	ledger     *LedgerService
	guard      *CashLimitGuard
	config     *ConfigService
	cardRepo   portsrepo.CardRepositoryFacade
	partyRepo  portsrepo.PartyRepositoryFacade
	profiles   portsrepo.AccountProfileRepositoryFacade
	pinHasher  portssvc.PinHasher
}

func NewCardService(
	dispatcher *Dispatcher,
	ledger *LedgerService,
	guard *CashLimitGuard,
	config *ConfigService,
	cardRepo portsrepo.CardRepositoryFacade,
	partyRepo portsrepo.PartyRepositoryFacade,
	profiles portsrepo.AccountProfileRepositoryFacade,
	pinHasher portssvc.PinHasher,
) *CardService {
	return &CardService{
		dispatcher: dispatcher,
		ledger:     ledger,
		guard:      guard,
		config:     config,
		cardRepo:   cardRepo,
		partyRepo:  partyRepo,
		profiles:   profiles,
		pinHasher:  pinHasher,
	}
}

var _ portssvc.CardSvcFacade = (*CardService)(nil)

// EnrollCard sells a card to a new client. The agent collects the price in cash,
// keeps its commission in its wallet and owes the rest to the platform.
func (s *CardService) EnrollCard(ctx context.Context, actor domain.Actor, cmd dto.EnrollCardCommand) (*dto.CardEnrollmentResult, error) {
	if err := s.Authorize(actor, domain.ActorAgent); err != nil {
		return nil, err
	}
	agentID := actor.ID

	return dispatch(ctx, s.dispatcher, command[dto.CardEnrollmentResult]{
		actor:      actor,
		action:     "CARD_ENROLLED",
		resultType: dto.ResultCardEnrollment,
		payload:    cmd,
		execute: func(ctx context.Context) (*dto.CardEnrollmentResult, map[string]string, error) {
			if _, err := s.partyRepo.FindAgentByID(ctx, agentID); err != nil {
				return nil, nil, notFoundAsForbidden(err, "agent is not registered")
			}

			cfg, err := s.config.GetPlatformConfig(ctx)
			if err != nil {
				return nil, nil, err
			}
			platformShare, commission := policy.EnrollmentSplit(*cfg)

			exists, err := s.cardRepo.ExistsByCardUID(ctx, cmd.CardUID)
			if err != nil {
				return nil, nil, err
			}
			if exists {
				return nil, nil, apperrors.NewAppError(apperrors.KindValidation, "card UID is already enrolled", apperrors.ErrDuplicate)
			}

			// bcrypt before any row lock is taken.
			hashedPIN, err := s.pinHasher.Hash(cmd.PIN)
			if err != nil {
				return nil, nil, apperrors.Technical("failed to hash PIN", err)
			}

			cash := domain.AgentCashAccount(agentID)
			wallet := domain.AgentWalletAccount(agentID)
			platform := domain.PlatformAccount(domain.AccountPlatform)

			profiles, err := s.ledger.Lock(ctx, cash, wallet, platform)
			if err != nil {
				return nil, nil, notFoundAsForbidden(err, "agent accounts are not provisioned")
			}
			if err := requireActive(profiles, wallet, cash); err != nil {
				return nil, nil, err
			}

			p := &posting{}
			p.debit(cash, cfg.CardEnrollmentPrice, domain.LegPrincipal).
				credit(platform, platformShare, domain.LegPrincipal).
				credit(wallet, commission, domain.LegCommission)

			if err := s.guard.Check(ctx, cashDelta(p.entries)); err != nil {
				return nil, nil, err
			}

			now := s.Now()
			client := domain.Client{
				ClientID:    newID(),
				DisplayName: cmd.ClientName,
				Phone:       cmd.ClientPhone,
				EnrolledBy:  agentID,
				AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: agentID, LastUpdatedAt: now, LastUpdatedBy: agentID},
			}
			if err := s.partyRepo.SaveClient(ctx, client); err != nil {
				return nil, nil, err
			}
			if err := s.profiles.SaveProfile(ctx, domain.NewAccountProfile(domain.ClientAccount(client.ClientID), now, agentID)); err != nil {
				return nil, nil, err
			}

			card := domain.Card{
				CardID:      newID(),
				ClientID:    client.ClientID,
				CardUID:     cmd.CardUID,
				HashedPIN:   hashedPIN,
				Status:      domain.CardActive,
				AuditFields: client.AuditFields,
			}
			if err := s.cardRepo.SaveCard(ctx, card); err != nil {
				if errors.Is(err, apperrors.ErrDuplicate) {
					return nil, nil, apperrors.NewAppError(apperrors.KindValidation, "card UID is already enrolled", err)
				}
				return nil, nil, err
			}

			txn := s.ledger.newTransaction(domain.TxnCardEnrollment, cfg.CardEnrollmentPrice, actor)
			if _, err := s.ledger.Post(ctx, txn, p.entries); err != nil {
				return nil, nil, err
			}

			return &dto.CardEnrollmentResult{
					TransactionID:   txn.TransactionID,
					ClientID:        client.ClientID,
					CardID:          card.CardID,
					Price:           cfg.CardEnrollmentPrice,
					PlatformShare:   platformShare,
					AgentCommission: commission,
				}, map[string]string{
					"transactionId": txn.TransactionID,
					"agentId":       agentID,
					"clientId":      client.ClientID,
					"cardId":        card.CardID,
					"amount":        cfg.CardEnrollmentPrice.String(),
					"commission":    commission.String(),
				}, nil
		},
	})
}

// UpdateCardStatus blocks, suspends or marks a card lost.
func (s *CardService) UpdateCardStatus(ctx context.Context, actor domain.Actor, cmd dto.UpdateCardStatusCommand) (*domain.Card, error) {
	if err := s.Authorize(actor, domain.ActorAgent, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[domain.Card]{
		actor:      actor,
		action:     "CARD_STATUS_UPDATED",
		resultType: dto.ResultCard,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.Card, map[string]string, error) {
			card, err := s.cardRepo.LockCardByID(ctx, cmd.CardID)
			if err != nil {
				return nil, nil, err
			}
			previous := card.Status
			if err := card.ChangeStatus(cmd.Status, s.Now(), actor.ID); err != nil {
				return nil, nil, apperrors.Validationf("%v", err)
			}
			if err := s.cardRepo.UpdateCard(ctx, *card); err != nil {
				return nil, nil, err
			}
			return card, map[string]string{
				"cardId":         card.CardID,
				"clientId":       card.ClientID,
				"previousStatus": string(previous),
				"status":         string(card.Status),
			}, nil
		},
	})
}

// UnblockCard reactivates a card and clears its failed PIN counter.
func (s *CardService) UnblockCard(ctx context.Context, actor domain.Actor, cmd dto.UnblockCardCommand) (*domain.Card, error) {
	if err := s.Authorize(actor, domain.ActorAdmin); err != nil {
		return nil, err
	}
	return dispatch(ctx, s.dispatcher, command[domain.Card]{
		actor:      actor,
		action:     "CARD_UNBLOCKED",
		resultType: dto.ResultCard,
		payload:    cmd,
		execute: func(ctx context.Context) (*domain.Card, map[string]string, error) {
			card, err := s.cardRepo.LockCardByID(ctx, cmd.CardID)
			if err != nil {
				return nil, nil, err
			}
			previous := card.Status
			card.Unblock(s.Now(), actor.ID)
			if err := s.cardRepo.UpdateCard(ctx, *card); err != nil {
				return nil, nil, err
			}
			return card, map[string]string{
				"cardId":         card.CardID,
				"clientId":       card.ClientID,
				"previousStatus": string(previous),
				"status":         string(card.Status),
			}, nil
		},
	})
}
