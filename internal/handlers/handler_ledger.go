package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/SscSPs/mobile_money_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler serves reversals and the read side of the ledger.
type ledgerHandler struct {
	reversalService portssvc.ReversalSvcFacade
	accountService  portssvc.AccountSvcFacade
}

// RegisterLedgerRoutes registers transaction and account statement routes.
func RegisterLedgerRoutes(rg *gin.RouterGroup, rs portssvc.ReversalSvcFacade, as portssvc.AccountSvcFacade) {
	h := &ledgerHandler{reversalService: rs, accountService: as}

	transactions := rg.Group("/transactions")
	{
		transactions.GET("/:transactionID/entries", h.getTransactionEntries)
		transactions.POST("/:transactionID/reversal", h.reverseTransaction)
	}

	accounts := rg.Group("/accounts/:type")
	{
		accounts.GET("/balance", h.getBalance)
		accounts.GET("/entries", h.listEntries)
	}
}

func (h *ledgerHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.ReversalCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta, func() { cmd.TransactionID = c.Param("transactionID") }) {
		return
	}

	result, err := h.reversalService.ReverseTransaction(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "ReverseTransaction")
		return
	}
	logger.Info("Transaction reversed",
		slog.String("original_transaction_id", result.OriginalTransactionID),
		slog.String("transaction_id", result.TransactionID),
	)
	c.JSON(http.StatusCreated, result)
}

func (h *ledgerHandler) getTransactionEntries(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	entries, err := h.reversalService.GetTransactionEntries(c.Request.Context(), actor, c.Param("transactionID"))
	if err != nil {
		respondError(c, err, "GetTransactionEntries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// getBalance handles GET /accounts/:type/balance?owner=<id>.
func (h *ledgerHandler) getBalance(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	ref, ok := accountRefFromRequest(c)
	if !ok {
		return
	}

	balance, err := h.accountService.GetBalance(c.Request.Context(), actor, ref)
	if err != nil {
		respondError(c, err, "GetBalance")
		return
	}
	c.JSON(http.StatusOK, balance)
}

// listEntries handles GET /accounts/:type/entries?owner=<id>&limit=&nextToken=.
func (h *ledgerHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	ref, ok := accountRefFromRequest(c)
	if !ok {
		return
	}

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error(), "code": apperrors.KindValidation})
		return
	}

	page, err := h.accountService.ListEntries(c.Request.Context(), actor, ref, params)
	if err != nil {
		respondError(c, err, "ListEntries")
		return
	}
	c.JSON(http.StatusOK, page)
}
