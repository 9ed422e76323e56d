package router // route registration for the ticketing API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/blockticket/blockticket/internal/config"
	"github.com/blockticket/blockticket/internal/handler"
	"github.com/blockticket/blockticket/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth    *handler.AuthHandler
	Events  *handler.EventHandler
	Tickets *handler.TicketHandler
	Market  *handler.MarketplaceHandler
	Admin   *handler.AdminHandler
}

// Register wires the whole HTTP surface onto e.
//
// Public routes need no token: health, metrics, event/ticket/listing
// browsing and the fee quote. The /v1 group requires a valid access
// token; /v1/admin additionally requires the ADMIN role. Browse routes
// sit behind the Redis response cache, and everything shares the
// token-bucket rate limiter.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Unauthenticated session endpoints.
	authGroup := e.Group("/v1/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/refresh-access", h.Auth.RefreshAccess)
	// Logout accepts either a bearer token or a refresh token in the
	// body, so it stays outside the JWT middleware.
	authGroup.POST("/logout", h.Auth.Logout)

	// Public browse routes, cached.
	browse := e.Group("", middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	browse.GET("/v1/events", h.Events.Active)
	browse.GET("/v1/events/:id", h.Events.Get)
	browse.GET("/v1/tickets/:id", h.Tickets.Get)
	browse.GET("/v1/market/listings", h.Market.All)
	browse.GET("/v1/fees", h.Admin.Fees)

	// Authenticated routes.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	auth.Use(middleware.RequireRole("USER", "ADMIN"))

	auth.GET("/me", h.Auth.Me)

	auth.POST("/events", h.Events.Create)
	auth.PUT("/events/:id", h.Events.Update)
	auth.DELETE("/events/:id", h.Events.Cancel)
	auth.GET("/my/events", h.Events.Mine)

	auth.POST("/tickets", h.Tickets.Mint)
	auth.POST("/tickets/batch", h.Tickets.MintBatch)
	auth.GET("/my/tickets", h.Tickets.Mine)
	auth.POST("/tickets/:id/transfer", h.Tickets.Transfer)
	auth.POST("/tickets/:id/approve", h.Tickets.Approve)
	auth.POST("/approvals", h.Tickets.SetOperatorApproval)

	auth.POST("/market/listings", h.Market.List)
	auth.POST("/market/listings/batch", h.Market.ListBatch)
	auth.POST("/market/listings/:id/buy", h.Market.Buy)
	auth.DELETE("/market/listings/:id", h.Market.Cancel)
	auth.GET("/my/listings", h.Market.Mine)

	// Administrator routes. The registries re-check the capability.
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.PUT("/fees/mint", h.Admin.SetMintFee)
	admin.PUT("/fees/listing", h.Admin.SetListingFee)
	admin.POST("/fees/mint/withdraw", h.Admin.WithdrawMintFees)
	admin.POST("/fees/listing/withdraw", h.Admin.WithdrawListingFees)
	admin.POST("/accounts/:id/credit", h.Admin.CreditAccount)
}
