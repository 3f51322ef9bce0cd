package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/SscSPs/mobile_money_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// cardHandler serves enrollment, the card state machine and card payments.
type cardHandler struct {
	cardService    portssvc.CardSvcFacade
	paymentService portssvc.PaymentSvcFacade
}

func newCardHandler(cs portssvc.CardSvcFacade, ps portssvc.PaymentSvcFacade) *cardHandler {
	return &cardHandler{cardService: cs, paymentService: ps}
}

// RegisterCardRoutes registers card and payment routes.
func RegisterCardRoutes(rg *gin.RouterGroup, cs portssvc.CardSvcFacade, ps portssvc.PaymentSvcFacade) {
	h := newCardHandler(cs, ps)

	cards := rg.Group("/cards")
	{
		cards.POST("", h.enrollCard)
		cards.PUT("/:cardID/status", h.updateCardStatus)
		cards.POST("/:cardID/unblock", h.unblockCard)
	}
	rg.POST("/payments", h.payByCard)
}

// enrollCard handles POST /cards. An agent enrolls a new client and sells the card.
func (h *cardHandler) enrollCard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.EnrollCardCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta) {
		return
	}

	result, err := h.cardService.EnrollCard(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "EnrollCard")
		return
	}

	logger.Info("Card enrolled", slog.String("card_id", result.CardID), slog.String("transaction_id", result.TransactionID))
	c.JSON(http.StatusCreated, result)
}

func (h *cardHandler) updateCardStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.UpdateCardStatusCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta, func() { cmd.CardID = c.Param("cardID") }) {
		return
	}

	card, err := h.cardService.UpdateCardStatus(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "UpdateCardStatus")
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *cardHandler) unblockCard(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.UnblockCardCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta, func() { cmd.CardID = c.Param("cardID") }) {
		return
	}

	card, err := h.cardService.UnblockCard(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "UnblockCard")
		return
	}
	c.JSON(http.StatusOK, card)
}

// payByCard handles POST /payments. The merchant is the authenticated actor.
func (h *cardHandler) payByCard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.PayByCardCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta) {
		return
	}

	result, err := h.paymentService.PayByCard(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "PayByCard")
		return
	}

	logger.Info("Card payment accepted", slog.String("transaction_id", result.TransactionID), slog.String("fee", result.Fee.String()))
	c.JSON(http.StatusCreated, result)
}
