package handlers

import (
	"net/http"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/gin-gonic/gin"
)

type configHandler struct {
	configService portssvc.ConfigSvcFacade
}

// RegisterConfigRoutes registers fee, commission and platform config routes.
func RegisterConfigRoutes(rg *gin.RouterGroup, cs portssvc.ConfigSvcFacade) {
	h := &configHandler{configService: cs}

	cfg := rg.Group("/config")
	{
		cfg.GET("/fees/:feeType", h.getFeeConfig)
		cfg.PUT("/fees/:feeType", h.upsertFeeConfig)
		cfg.GET("/commissions/:commissionType", h.getCommissionConfig)
		cfg.PUT("/commissions/:commissionType", h.upsertCommissionConfig)
		cfg.GET("/platform", h.getPlatformConfig)
		cfg.PUT("/platform", h.upsertPlatformConfig)
	}
}

func (h *configHandler) getFeeConfig(c *gin.Context) {
	if _, ok := actorOrAbort(c); !ok {
		return
	}
	cfg, err := h.configService.GetFeeConfig(c.Request.Context(), domain.FeeType(c.Param("feeType")))
	if err != nil {
		respondError(c, err, "GetFeeConfig")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *configHandler) upsertFeeConfig(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.UpsertFeeConfigCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta, func() { cmd.FeeType = domain.FeeType(c.Param("feeType")) }) {
		return
	}

	cfg, err := h.configService.UpsertFeeConfig(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "UpsertFeeConfig")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *configHandler) getCommissionConfig(c *gin.Context) {
	if _, ok := actorOrAbort(c); !ok {
		return
	}
	cfg, err := h.configService.GetCommissionConfig(c.Request.Context(), domain.CommissionType(c.Param("commissionType")))
	if err != nil {
		respondError(c, err, "GetCommissionConfig")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *configHandler) upsertCommissionConfig(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.UpsertCommissionConfigCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta, func() { cmd.CommissionType = domain.CommissionType(c.Param("commissionType")) }) {
		return
	}

	cfg, err := h.configService.UpsertCommissionConfig(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "UpsertCommissionConfig")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *configHandler) getPlatformConfig(c *gin.Context) {
	if _, ok := actorOrAbort(c); !ok {
		return
	}
	cfg, err := h.configService.GetPlatformConfig(c.Request.Context())
	if err != nil {
		respondError(c, err, "GetPlatformConfig")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *configHandler) upsertPlatformConfig(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var cmd dto.UpsertPlatformConfigCommand
	if !bindCommand(c, &cmd, &cmd.CommandMeta) {
		return
	}

	cfg, err := h.configService.UpsertPlatformConfig(c.Request.Context(), actor, cmd)
	if err != nil {
		respondError(c, err, "UpsertPlatformConfig")
		return
	}
	c.JSON(http.StatusOK, cfg)
}
