package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/gin-gonic/gin"
)

type cashHandler struct {
	cashService portssvc.CashSvcFacade
}

// RegisterCashRoutes registers the agent cash routes.
func RegisterCashRoutes(rg *gin.RouterGroup, cs portssvc.CashSvcFacade) {
	h := &cashHandler{cashService: cs}

	cash := rg.Group("/cash")
	{
		cash.POST("/withdrawals", h.merchantWithdraw)
		cash.POST("/cash-ins", h.cashIn)
		cash.POST("/bank-deposits", h.bankDeposit)
	}
}

func (h *cashHandler) merchantWithdraw(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.MerchantWithdrawCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta) {
		return
	}

	result, err := h.cashService.MerchantWithdrawAtAgent(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "MerchantWithdrawAtAgent")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *cashHandler) cashIn(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.CashInCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta) {
		return
	}

	result, err := h.cashService.CashInByAgent(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "CashInByAgent")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *cashHandler) bankDeposit(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.BankDepositCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta) {
		return
	}

	result, err := h.cashService.AgentBankDepositReceipt(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "AgentBankDepositReceipt")
		return
	}
	c.JSON(http.StatusCreated, result)
}
