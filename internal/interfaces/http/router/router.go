// Package router wires the HTTP surface: public storefront routes resolved
// by tenant header, staff routes behind JWT, and unauthenticated gateway
// callbacks.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/biasharahub/backend/internal/domain/tenant"
	"github.com/biasharahub/backend/internal/infrastructure/auth"
	"github.com/biasharahub/backend/internal/infrastructure/logger"
	"github.com/biasharahub/backend/internal/interfaces/http/handler"
	"github.com/biasharahub/backend/internal/interfaces/http/middleware"
)

// Deps bundles everything the router needs
type Deps struct {
	Logger *zap.Logger
	JWT    *auth.JWTService
	// MaxBodyBytes caps request bodies when positive
	MaxBodyBytes int64
	// Limiter applies per-caller rate limiting when non-nil
	Limiter   *middleware.RateLimiter
	Tenants   tenant.Repository
	System    *handler.SystemHandler
	Payments  *handler.PaymentHandler
	Wallet    *handler.WalletHandler
	Payouts   *handler.PayoutHandler
	Escrows   *handler.EscrowHandler
	Callbacks *handler.CallbackHandler
}

// Setup registers middleware and all routes on the engine
func Setup(engine *gin.Engine, deps Deps) {
	middleware.SetupValidator()

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(deps.Logger),
		logger.Recovery(deps.Logger),
	)
	if deps.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(deps.MaxBodyBytes))
	}
	if deps.Limiter != nil {
		engine.Use(middleware.RateLimit(deps.Limiter))
	}

	api := engine.Group("/api/v1")
	api.GET("/health", deps.System.Health)

	// Daraja calls these; they authenticate by idempotency, not by token
	callbacks := api.Group("/callbacks/mpesa")
	{
		callbacks.POST("/stk", deps.Callbacks.HandleSTKCallback)
		callbacks.POST("/b2c/result", deps.Callbacks.HandleB2CResult)
		callbacks.POST("/b2c/timeout", deps.Callbacks.HandleB2CTimeout)
	}

	// Customer-facing routes resolve the tenant from the X-Tenant-ID header
	storefront := api.Group("")
	storefront.Use(middleware.TenantResolver(deps.Tenants))
	{
		storefront.POST("/payments", deps.Payments.InitiateCharge)
		storefront.POST("/bookings/:booking_id/delivery-confirmation", deps.Escrows.ConfirmDelivery)
		storefront.POST("/bookings/:booking_id/dispute", deps.Escrows.Dispute)
	}

	// Staff routes resolve the tenant from the token claim
	staff := api.Group("")
	staff.Use(middleware.JWTAuth(deps.JWT), middleware.TenantResolver(deps.Tenants))
	{
		staff.POST("/payments/:id/confirm", deps.Payments.Confirm)
		staff.GET("/bookings/:booking_id/payments", deps.Payments.ListByBooking)
		staff.GET("/wallet/balance", deps.Wallet.Balance)
		staff.GET("/wallet/statement", deps.Wallet.Statement)
		staff.POST("/payouts", deps.Payouts.Request)
		staff.GET("/payouts", deps.Payouts.List)
		staff.PUT("/payouts/default-destination", deps.Payouts.SetDefaultDestination)
	}
}
