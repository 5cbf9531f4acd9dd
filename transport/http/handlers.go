package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
	}
}

// Challenge handles the challenge request
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		// Unreadable bodies fall through to the missing-field check.
		req.WalletAddress = ""
	}

	challenge, err := h.authService.CreateChallenge(c.Request.Context(), c.ClientIP(), req.WalletAddress)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   challenge.Message,
		"expiresAt": challenge.ExpiresAt.Format(time.RFC3339),
	})
}

// Authenticate exchanges a signed message for a session token
func (h *AuthHandlers) Authenticate(c *gin.Context) {
	var req core.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		// An unreadable body is treated as empty so the rate check still runs first.
		req = core.Credentials{}
	}

	result, err := h.authService.Authenticate(c.Request.Context(), c.ClientIP(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     result.Token,
		"expiresIn": int(time.Until(result.ExpiresAt).Round(time.Second).Seconds()),
	})
}

// PageHandlers contains HTTP handlers for page endpoints
type PageHandlers struct {
	pageService *service.PageService
	logger      *slog.Logger
}

// NewPageHandlers creates new page handlers
func NewPageHandlers(pageService *service.PageService, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		pageService: pageService,
		logger:      logger,
	}
}

// Get returns a page record
func (h *PageHandlers) Get(c *gin.Context) {
	page, err := h.pageService.Get(c.Request.Context(), c.Param("pageWalletId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Save writes a page owned by the authenticated wallet
func (h *PageHandlers) Save(c *gin.Context) {
	// Wallet address is set by the auth middleware
	walletAddress := c.GetString(walletAddressKey)
	if walletAddress == "" {
		writeError(c, h.logger, core.ErrMissingToken)
		return
	}

	var req core.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, &core.ValidationError{Reason: "Invalid request body."})
		return
	}

	page, err := h.pageService.Save(c.Request.Context(), walletAddress, &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Page saved successfully.",
		"item":    page,
	})
}
