package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/tipgate/ports"
	"github.com/layer-3/tipgate/service"
)

// RouterConfig holds transport-level settings
type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	AccessLog      bool

	// TrustedProxies lists the proxy IPs or CIDRs whose forwarding headers
	// are believed. Empty means the client IP is always the socket peer.
	TrustedProxies []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	authService *service.AuthService,
	pageService *service.PageService,
	limiter ports.RateLimiter,
	cfg RouterConfig,
	logger *slog.Logger,
) *gin.Engine {
	logger = logger.With("component", "http")

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Error("invalid trusted proxies, ignoring forwarding headers", "proxies", cfg.TrustedProxies, "error", err)
		_ = router.SetTrustedProxies(nil)
	}
	if cfg.AccessLog {
		router.Use(gin.Logger())
	}
	router.Use(
		RecoveryMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
		TimeoutMiddleware(cfg.RequestTimeout),
	)

	authHandlers := NewAuthHandlers(authService, logger)
	pageHandlers := NewPageHandlers(pageService, logger)

	// Auth routes; the auth service applies its own rate limit
	router.POST("/challenge", authHandlers.Challenge)
	router.POST("/authenticate", authHandlers.Authenticate)

	// Page routes
	pages := router.Group("/pages")
	pages.Use(RateLimitMiddleware(limiter, "pages", logger))
	{
		pages.GET("", pageHandlers.Get)
		pages.GET("/:pageWalletId", pageHandlers.Get)
		pages.POST("", AuthMiddleware(authService, logger), pageHandlers.Save)
	}

	return router
}
