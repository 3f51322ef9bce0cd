package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/SscSPs/mobile_money_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settlementHandler serves the agent payout and client refund lifecycles.
type settlementHandler struct {
	payoutService portssvc.PayoutSvcFacade
	refundService portssvc.RefundSvcFacade
}

// RegisterSettlementRoutes registers payout and refund routes.
func RegisterSettlementRoutes(rg *gin.RouterGroup, ps portssvc.PayoutSvcFacade, rs portssvc.RefundSvcFacade) {
	h := &settlementHandler{payoutService: ps, refundService: rs}

	payouts := rg.Group("/payouts")
	{
		payouts.POST("", h.requestPayout)
		payouts.GET("/:payoutID", h.getPayout)
		payouts.POST("/:payoutID/complete", h.completePayout)
		payouts.POST("/:payoutID/fail", h.failPayout)
	}

	refunds := rg.Group("/refunds")
	{
		refunds.POST("", h.requestRefund)
		refunds.GET("/:refundID", h.getRefund)
		refunds.POST("/:refundID/complete", h.completeRefund)
		refunds.POST("/:refundID/fail", h.failRefund)
	}
}

func (h *settlementHandler) requestPayout(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.RequestAgentPayoutCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta) {
		return
	}

	payout, err := h.payoutService.RequestAgentPayout(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "RequestAgentPayout")
		return
	}
	logger.Info("Payout requested", slog.String("payout_id", payout.PayoutID), slog.String("amount", payout.Amount.String()))
	c.JSON(http.StatusCreated, payout)
}

func (h *settlementHandler) completePayout(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.CompleteAgentPayoutCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta, func() { cmd.PayoutID = c.Param("payoutID") }) {
		return
	}

	payout, err := h.payoutService.CompleteAgentPayout(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "CompleteAgentPayout")
		return
	}
	c.JSON(http.StatusOK, payout)
}

func (h *settlementHandler) failPayout(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.FailAgentPayoutCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta, func() { cmd.PayoutID = c.Param("payoutID") }) {
		return
	}

	payout, err := h.payoutService.FailAgentPayout(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "FailAgentPayout")
		return
	}
	c.JSON(http.StatusOK, payout)
}

func (h *settlementHandler) getPayout(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	payout, err := h.payoutService.GetPayout(c.Request.Context(), actor, c.Param("payoutID"))
	if err != nil {
		respondError(c, err, "GetPayout")
		return
	}
	c.JSON(http.StatusOK, payout)
}

func (h *settlementHandler) requestRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.RequestClientRefundCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta) {
		return
	}

	refund, err := h.refundService.RequestClientRefund(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "RequestClientRefund")
		return
	}
	logger.Info("Client refund requested", slog.String("refund_id", refund.RefundID), slog.String("amount", refund.Amount.String()))
	c.JSON(http.StatusCreated, refund)
}

func (h *settlementHandler) completeRefund(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.CompleteClientRefundCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta, func() { cmd.RefundID = c.Param("refundID") }) {
		return
	}

	refund, err := h.refundService.CompleteClientRefund(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "CompleteClientRefund")
		return
	}
	c.JSON(http.StatusOK, refund)
}

func (h *settlementHandler) failRefund(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.FailClientRefundCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta, func() { cmd.RefundID = c.Param("refundID") }) {
		return
	}

	refund, err := h.refundService.FailClientRefund(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "FailClientRefund")
		return
	}
	c.JSON(http.StatusOK, refund)
}

func (h *settlementHandler) getRefund(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	refund, err := h.refundService.GetClientRefund(c.Request.Context(), actor, c.Param("refundID"))
	if err != nil {
		respondError(c, err, "GetClientRefund")
		return
	}
	c.JSON(http.StatusOK, refund)
}
