package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/ports"
	"github.com/layer-3/tipgate/service"
)

const walletAddressKey = "walletAddress"

// AuthMiddleware creates middleware that validates session tokens
func AuthMiddleware(authService *service.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			writeError(c, logger, core.ErrMissingToken)
			return
		}

		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			writeError(c, logger, core.ErrInvalidToken)
			return
		}

		session, err := authService.ValidateToken(token)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		// Set the wallet claim in the context
		c.Set(walletAddressKey, session.WalletAddress)

		c.Next()
	}
}

// RateLimitMiddleware admits requests per client IP within scope
func RateLimitMiddleware(limiter ports.RateLimiter, scope string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := limiter.Admit(scope + ":" + c.ClientIP()); err != nil {
			writeError(c, logger, err)
			return
		}
		c.Next()
	}
}

// CORSMiddleware lets browsers call the API cross-origin and answers
// preflights. An empty list or "*" allows any origin.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}

// TimeoutMiddleware bounds the request context; store calls past the
// deadline fail and surface as internal errors
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RecoveryMiddleware is the top-level guard turning panics into 500s
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		writeError(c, logger, fmt.Errorf("panic: %v", recovered))
	})
}
