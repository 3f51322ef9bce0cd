package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/SscSPs/mobile_money_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler serves party onboarding and account status changes.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// RegisterAccountRoutes registers agent, merchant and account status routes.
func RegisterAccountRoutes(rg *gin.RouterGroup, as portssvc.AccountSvcFacade) {
	h := newAccountHandler(as)

	rg.POST("/agents", h.createAgent)
	rg.POST("/merchants", h.createMerchant)
	rg.PUT("/accounts/:type/status", h.updateAccountStatus)
}

func (h *accountHandler) createAgent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.CreateAgentCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta) {
		return
	}

	result, err := h.accountService.CreateAgent(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "CreateAgent")
		return
	}
	logger.Info("Agent created", slog.String("agent_id", result.Agent.AgentID))
	c.JSON(http.StatusCreated, result)
}

func (h *accountHandler) createMerchant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.CreateMerchantCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta) {
		return
	}

	result, err := h.accountService.CreateMerchant(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "CreateMerchant")
		return
	}
	logger.Info("Merchant created", slog.String("merchant_id", result.Merchant.MerchantID))
	c.JSON(http.StatusCreated, result)
}

// updateAccountStatus handles PUT /accounts/:type/status?owner=<id>.
func (h *accountHandler) updateAccountStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	ref, ok := accountRefFromRequest(c)
	if !ok {
		return
	}
	var cmd dto.UpdateAccountStatusCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta, func() { cmd.Account = ref }) {
		return
	}

	profile, err := h.accountService.UpdateAccountStatus(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "UpdateAccountStatus")
		return
	}
	c.JSON(http.StatusOK, profile)
}
