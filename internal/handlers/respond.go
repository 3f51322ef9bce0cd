package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/SscSPs/mobile_money_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader may carry the idempotency key instead of the request body.
const IdempotencyKeyHeader = "Idempotency-Key"

var statusByKind = map[apperrors.Kind]int{
	apperrors.KindValidation:          http.StatusBadRequest,
	apperrors.KindUnauthorized:        http.StatusUnauthorized,
	apperrors.KindForbidden:           http.StatusForbidden,
	apperrors.KindNotFound:            http.StatusNotFound,
	apperrors.KindInsufficientFunds:   http.StatusUnprocessableEntity,
	apperrors.KindBalanceMustBeZero:   http.StatusUnprocessableEntity,
	apperrors.KindIdempotencyConflict: http.StatusConflict,
	apperrors.KindTechnical:           http.StatusInternalServerError,
}

// respondError writes err as {"error", "code"}. Technical details only go to the log.
func respondError(c *gin.Context, err error, operation string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kind := apperrors.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.Error(operation+" failed", slog.String("code", string(kind)), slog.String("error", err.Error()))
	} else {
		logger.Warn(operation+" rejected", slog.String("code", string(kind)), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": apperrors.PublicMessage(err), "code": kind})
}

// actorOrAbort resolves the caller set by AuthMiddleware.
func actorOrAbort(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": apperrors.KindUnauthorized})
		return domain.Actor{}, false
	}
	return actor, true
}

// bindCommand decodes a command body. The Idempotency-Key header is applied
// first so a key in the body wins. fromPath sets fields owned by the URL; they
// run before decoding so binding sees them, and again after so the body cannot
// override them.
func bindCommand(c *gin.Context, cmd any, meta *dto.CommandMeta, fromPath ...func()) bool {
	meta.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)
	for _, set := range fromPath {
		set()
	}
	err := c.ShouldBindJSON(cmd)
	for _, set := range fromPath {
		set()
	}
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind command", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error(), "code": apperrors.KindValidation})
		return false
	}
	return true
}

// accountRefFromRequest reads /accounts/:type with an optional ?owner= query.
func accountRefFromRequest(c *gin.Context) (domain.AccountRef, bool) {
	ref := domain.AccountRef{
		Type:     domain.AccountType(c.Param("type")),
		OwnerRef: c.Query("owner"),
	}
	if err := ref.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperrors.KindValidation})
		return domain.AccountRef{}, false
	}
	return ref, true
}
