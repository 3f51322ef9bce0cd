package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/SscSPs/mobile_money_core/internal/handlers"
	"github.com/SscSPs/mobile_money_core/internal/middleware"
	"github.com/SscSPs/mobile_money_core/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	cfg      *config.Config
	card     *MockCardService
	payment  *MockPaymentService
	cash     *MockCashService
	payout   *MockPayoutService
	refund   *MockRefundService
	reversal *MockReversalService
	account  *MockAccountService
	config   *MockConfigService
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.cfg = &config.Config{JWTSecret: "test-secret-key-that-is-long-enough", JWTIssuer: "mm-test"}

	s.card = new(MockCardService)
	s.payment = new(MockPaymentService)
	s.cash = new(MockCashService)
	s.payout = new(MockPayoutService)
	s.refund = new(MockRefundService)
	s.reversal = new(MockReversalService)
	s.account = new(MockAccountService)
	s.config = new(MockConfigService)

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, s.cfg, &portssvc.ServiceContainer{
		Card:     s.card,
		Payment:  s.payment,
		Cash:     s.cash,
		Payout:   s.payout,
		Refund:   s.refund,
		Reversal: s.reversal,
		Account:  s.account,
		Config:   s.config,
	}, nil)
}

// generateTestToken creates a signed JWT for the given actor.
func (s *HandlerTestSuite) generateTestToken(actorType domain.ActorType, actorID string) string {
	claims := middleware.ActorClaims{
		ActorType: string(actorType),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWTIssuer,
			Subject:   actorID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (s *HandlerTestSuite) do(method, url string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) decodeError(w *httptest.ResponseRecorder) (string, string) {
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error, body.Code
}

// --- Test Cases ---

func (s *HandlerTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestMissingTokenIsUnauthorized() {
	w := s.do(http.MethodPost, "/api/v1/payments", map[string]any{"idempotencyKey": "k"}, "")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.payment.AssertNotCalled(s.T(), "PayByCard", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestTokenWithUnknownActorTypeIsUnauthorized() {
	token := s.generateTestToken("SUPERUSER", "x-1")
	w := s.do(http.MethodGet, "/api/v1/config/platform", nil, token)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestPayByCard_Success() {
	merchant := domain.Actor{Type: domain.ActorMerchant, ID: "merchant-1"}
	expected := &dto.CardPaymentResult{
		TransactionID: "txn-1",
		CardID:        "card-1",
		ClientID:      "client-1",
		MerchantID:    merchant.ID,
		Amount:        domain.MustParseMoney("1000"),
		Fee:           domain.MustParseMoney("20"),
	}

	s.payment.On("PayByCard",
		mock.Anything,
		mock.MatchedBy(func(a domain.Actor) bool { return a.Type == merchant.Type && a.ID == merchant.ID }),
		mock.MatchedBy(func(cmd dto.PayByCardCommand) bool {
			return cmd.IdempotencyKey == "pay-1" &&
				cmd.CardUID == "UID-1" &&
				cmd.PIN == "1234" &&
				cmd.Amount.Equal(domain.MustParseMoney("1000"))
		}),
	).Return(expected, nil).Once()

	body := map[string]any{"cardUid": "UID-1", "pin": "1234", "amount": "1000.00"}
	w := s.do(http.MethodPost, "/api/v1/payments", body, s.generateTestToken(domain.ActorMerchant, merchant.ID),
		handlers.IdempotencyKeyHeader, "pay-1")

	s.Equal(http.StatusCreated, w.Code)
	var got struct {
		TransactionID string `json:"transactionID"`
		Fee           string `json:"fee"`
	}
	s.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Equal("txn-1", got.TransactionID)
	s.Equal("20.00", got.Fee)
	s.payment.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestPayByCard_BodyKeyWinsOverHeader() {
	s.payment.On("PayByCard", mock.Anything, mock.Anything,
		mock.MatchedBy(func(cmd dto.PayByCardCommand) bool { return cmd.IdempotencyKey == "from-body" }),
	).Return(&dto.CardPaymentResult{TransactionID: "txn-1"}, nil).Once()

	body := map[string]any{"idempotencyKey": "from-body", "cardUid": "UID-1", "pin": "1234", "amount": "5"}
	w := s.do(http.MethodPost, "/api/v1/payments", body, s.generateTestToken(domain.ActorMerchant, "m-1"),
		handlers.IdempotencyKeyHeader, "from-header")

	s.Equal(http.StatusCreated, w.Code)
	s.payment.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestPayByCard_RejectsBadBodies() {
	token := s.generateTestToken(domain.ActorMerchant, "m-1")
	tests := []struct {
		name string
		body map[string]any
		key  string
	}{
		{"missing key", map[string]any{"cardUid": "UID-1", "pin": "1234", "amount": "5"}, ""},
		{"zero amount", map[string]any{"cardUid": "UID-1", "pin": "1234", "amount": "0"}, "k-1"},
		{"three decimals", map[string]any{"cardUid": "UID-1", "pin": "1234", "amount": "1.005"}, "k-2"},
		{"non numeric pin", map[string]any{"cardUid": "UID-1", "pin": "12ab", "amount": "5"}, "k-3"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			var headers []string
			if tt.key != "" {
				headers = []string{handlers.IdempotencyKeyHeader, tt.key}
			}
			w := s.do(http.MethodPost, "/api/v1/payments", tt.body, token, headers...)

			s.Equal(http.StatusBadRequest, w.Code)
			_, code := s.decodeError(w)
			s.Equal(string(apperrors.KindValidation), code)
		})
	}
	s.payment.AssertNotCalled(s.T(), "PayByCard", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestErrorKindsMapToStatuses() {
	token := s.generateTestToken(domain.ActorAgent, "agent-1")
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.Validationf("bad"), http.StatusBadRequest},
		{apperrors.Forbiddenf("client account is SUSPENDED"), http.StatusForbidden},
		{apperrors.NotFoundf("client"), http.StatusNotFound},
		{apperrors.InsufficientFundsf("short"), http.StatusUnprocessableEntity},
		{apperrors.BalanceMustBeZerof("balance is 5.00"), http.StatusUnprocessableEntity},
		{apperrors.IdempotencyConflictf("reused"), http.StatusConflict},
		{apperrors.Technical("db down", errors.New("dial tcp 10.0.0.1:5432")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		s.Run(string(apperrors.KindOf(tt.err)), func() {
			s.cash.On("CashInByAgent", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			body := map[string]any{"idempotencyKey": "k", "clientID": "client-1", "amount": "10"}
			w := s.do(http.MethodPost, "/api/v1/cash/cash-ins", body, token)

			s.Equal(tt.status, w.Code)
			msg, code := s.decodeError(w)
			s.Equal(string(apperrors.KindOf(tt.err)), code)
			s.NotContains(msg, "10.0.0.1")
		})
	}
}

func (s *HandlerTestSuite) TestCompletePayout_PathWinsOverBody() {
	s.payout.On("CompleteAgentPayout", mock.Anything,
		mock.MatchedBy(func(a domain.Actor) bool { return a.Type == domain.ActorAdmin }),
		mock.MatchedBy(func(cmd dto.CompleteAgentPayoutCommand) bool { return cmd.PayoutID == "payout-1" }),
	).Return(&domain.Payout{PayoutID: "payout-1"}, nil).Once()

	body := map[string]any{"idempotencyKey": "k", "payoutID": "someone-else"}
	w := s.do(http.MethodPost, "/api/v1/payouts/payout-1/complete", body, s.generateTestToken(domain.ActorAdmin, "admin-1"))

	s.Equal(http.StatusOK, w.Code)
	s.payout.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestUpdateCardStatus_UsesPathCardID() {
	s.card.On("UpdateCardStatus", mock.Anything, mock.Anything,
		mock.MatchedBy(func(cmd dto.UpdateCardStatusCommand) bool {
			return cmd.CardID == "card-9" && cmd.Status == domain.CardLost
		}),
	).Return(&domain.Card{CardID: "card-9", Status: domain.CardLost}, nil).Once()

	body := map[string]any{"idempotencyKey": "k", "status": "LOST"}
	w := s.do(http.MethodPut, "/api/v1/cards/card-9/status", body, s.generateTestToken(domain.ActorAgent, "agent-1"))

	s.Equal(http.StatusOK, w.Code)
	s.card.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestUpdateCardStatus_RejectsActive() {
	body := map[string]any{"idempotencyKey": "k", "status": "ACTIVE"}
	w := s.do(http.MethodPut, "/api/v1/cards/card-9/status", body, s.generateTestToken(domain.ActorAgent, "agent-1"))

	s.Equal(http.StatusBadRequest, w.Code)
	s.card.AssertNotCalled(s.T(), "UpdateCardStatus", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestListEntries_PassesPaging() {
	ref := domain.AccountRef{Type: domain.AccountClient, OwnerRef: "client-1"}
	next := "token-2"
	s.account.On("ListEntries", mock.Anything, mock.Anything, ref,
		mock.MatchedBy(func(p dto.ListEntriesParams) bool {
			return p.Limit == 2 && p.NextToken != nil && *p.NextToken == "token-1"
		}),
	).Return(&dto.ListEntriesResponse{Entries: []domain.LedgerEntry{{EntryID: "e-1"}, {EntryID: "e-2"}}, NextToken: &next}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/accounts/CLIENT/entries?owner=client-1&limit=2&nextToken=token-1", nil,
		s.generateTestToken(domain.ActorClient, "client-1"))

	s.Equal(http.StatusOK, w.Code)
	var page struct {
		Entries   []map[string]any `json:"entries"`
		NextToken *string          `json:"nextToken"`
	}
	s.NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.Len(page.Entries, 2)
	s.Require().NotNil(page.NextToken)
	s.Equal("token-2", *page.NextToken)
	s.account.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestListEntries_RejectsLimitOutOfRange() {
	w := s.do(http.MethodGet, "/api/v1/accounts/CLIENT/entries?owner=client-1&limit=1000", nil,
		s.generateTestToken(domain.ActorClient, "client-1"))

	s.Equal(http.StatusBadRequest, w.Code)
	s.account.AssertNotCalled(s.T(), "ListEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestGetBalance_PlatformAccount() {
	ref := domain.AccountRef{Type: domain.AccountPlatform}
	s.account.On("GetBalance", mock.Anything, mock.Anything, ref).
		Return(&dto.BalanceResult{Account: ref, Balance: domain.MustParseMoney("320")}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/accounts/PLATFORM/balance", nil, s.generateTestToken(domain.ActorAdmin, "admin-1"))

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"balance":"320.00"`)
	s.account.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestGetBalance_RejectsBadAccountRefs() {
	token := s.generateTestToken(domain.ActorAdmin, "admin-1")
	for _, url := range []string{
		"/api/v1/accounts/SAVINGS/balance?owner=x",
		"/api/v1/accounts/CLIENT/balance",
		"/api/v1/accounts/PLATFORM/balance?owner=x",
	} {
		w := s.do(http.MethodGet, url, nil, token)
		s.Equal(http.StatusBadRequest, w.Code, url)
	}
	s.account.AssertNotCalled(s.T(), "GetBalance", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestUpdateAccountStatus_ClosingWithBalance() {
	s.account.On("UpdateAccountStatus", mock.Anything, mock.Anything,
		mock.MatchedBy(func(cmd dto.UpdateAccountStatusCommand) bool {
			return cmd.Account == domain.AccountRef{Type: domain.AccountClient, OwnerRef: "client-1"} &&
				cmd.Status == domain.AccountClosed
		}),
	).Return(nil, apperrors.BalanceMustBeZerof("account CLIENT:client-1 has balance 5.00")).Once()

	body := map[string]any{"idempotencyKey": "close-1", "status": "CLOSED"}
	w := s.do(http.MethodPut, "/api/v1/accounts/CLIENT/status?owner=client-1", body, s.generateTestToken(domain.ActorAdmin, "admin-1"))

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	_, code := s.decodeError(w)
	s.Equal(string(apperrors.KindBalanceMustBeZero), code)
	s.account.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestUpsertFeeConfig_UsesPathType() {
	s.config.On("UpsertFeeConfig", mock.Anything, mock.Anything,
		mock.MatchedBy(func(cmd dto.UpsertFeeConfigCommand) bool {
			return cmd.FeeType == domain.FeeCardPayment && cmd.Rate.String() == "0.02" && cmd.Refundable
		}),
	).Return(&domain.FeeConfig{FeeType: domain.FeeCardPayment}, nil).Once()

	body := map[string]any{"idempotencyKey": "fee-1", "rate": "0.02", "min": "1", "max": "50", "refundable": true}
	w := s.do(http.MethodPut, "/api/v1/config/fees/CARD_PAYMENT", body, s.generateTestToken(domain.ActorAdmin, "admin-1"))

	s.Equal(http.StatusOK, w.Code)
	s.config.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestUpsertFeeConfig_UnknownTypeIsBadRequest() {
	body := map[string]any{"idempotencyKey": "fee-1", "rate": "0.02", "min": "1", "max": "50"}
	w := s.do(http.MethodPut, "/api/v1/config/fees/TRANSFER", body, s.generateTestToken(domain.ActorAdmin, "admin-1"))

	s.Equal(http.StatusBadRequest, w.Code)
	s.config.AssertNotCalled(s.T(), "UpsertFeeConfig", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestReverseTransaction() {
	s.reversal.On("ReverseTransaction", mock.Anything, mock.Anything,
		mock.MatchedBy(func(cmd dto.ReversalCommand) bool { return cmd.TransactionID == "txn-1" && cmd.Reason == "disputed" }),
	).Return(&dto.ReversalResult{TransactionID: "txn-2", OriginalTransactionID: "txn-1"}, nil).Once()

	body := map[string]any{"idempotencyKey": "rev-1", "reason": "disputed"}
	w := s.do(http.MethodPost, "/api/v1/transactions/txn-1/reversal", body, s.generateTestToken(domain.ActorAdmin, "admin-1"))

	s.Equal(http.StatusCreated, w.Code)
	s.reversal.AssertExpectations(s.T())
}

// --- Run Test Suite ---
func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
