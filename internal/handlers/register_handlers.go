package handlers

import (
	"sync"

	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/dto"
	"github.com/SscSPs/mobile_money_core/internal/middleware"
	"github.com/SscSPs/mobile_money_core/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"
)

var registerBindingTypes sync.Once

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// rateLimiter may be nil, in which case no rate limit is applied.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	// gin validates bodies with the same tags the dispatcher uses, so Money needs teaching here too.
	registerBindingTypes.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			dto.RegisterCustomTypes(v)
		}
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services, rateLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	if rateLimiter != nil {
		v1.Use(middleware.RateLimit(rateLimiter))
	}

	RegisterCardRoutes(v1, services.Card, services.Payment)
	RegisterCashRoutes(v1, services.Cash)
	RegisterSettlementRoutes(v1, services.Payout, services.Refund)
	RegisterLedgerRoutes(v1, services.Reversal, services.Account)
	RegisterAccountRoutes(v1, services.Account)
	RegisterConfigRoutes(v1, services.Config)
}
