package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/tipgate/core"
)

const msgInternal = "Internal server error."

// writeError maps the error taxonomy to a status code and a client-facing
// message. Anything unrecognised becomes a 500 whose details stay in the log.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		validationErr *core.ValidationError
		rateErr       *core.RateLimitError
	)

	switch {
	case errors.As(err, &validationErr):
		abort(c, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &rateErr):
		if rateErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rateErr.RetryAfter.Seconds()))))
		}
		abort(c, http.StatusTooManyRequests, "Too many requests.")
	case errors.Is(err, core.ErrInvalidSignature):
		abort(c, http.StatusUnauthorized, "Invalid signature.")
	case errors.Is(err, core.ErrInvalidChallenge):
		abort(c, http.StatusUnauthorized, "Invalid or expired challenge.")
	case errors.Is(err, core.ErrMissingToken):
		abort(c, http.StatusUnauthorized, "Missing Authorization header.")
	case errors.Is(err, core.ErrInvalidToken):
		abort(c, http.StatusUnauthorized, "Invalid or expired token.")
	case errors.Is(err, core.ErrOwnership):
		abort(c, http.StatusForbidden, "Wallet address mismatch.")
	case errors.Is(err, core.ErrNotFound):
		abort(c, http.StatusNotFound, "Page not found.")
	default:
		logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		abort(c, http.StatusInternalServerError, msgInternal)
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
