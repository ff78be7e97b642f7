package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parkly/internal/pkg/response"
)

// GateToken protects the QR scanner endpoints with a shared static token.
func GateToken(expected string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(expected) == "" {
			logGateFailure(log, c, http.StatusInternalServerError, "token_not_configured")
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gate token is not configured")
			c.Abort()
			return
		}

		token := c.GetHeader("X-Gate-Token")
		if token == "" {
			if h := c.GetHeader("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
				token = strings.TrimSpace(h[7:])
			}
		}
		if token == "" {
			logGateFailure(log, c, http.StatusUnauthorized, "missing_token")
			response.Error(c, http.StatusUnauthorized, "AUTH_MISSING", "Gate token is required")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			logGateFailure(log, c, http.StatusForbidden, "invalid_token")
			response.Error(c, http.StatusForbidden, "AUTH_INVALID", "Invalid gate token")
			c.Abort()
			return
		}

		c.Next()
	}
}

func logGateFailure(log *zap.Logger, c *gin.Context, status int, reason string) {
	log.Warn("gate auth rejected",
		zap.Int("status", status),
		zap.String("request_id", RequestID(c)),
		zap.String("client_ip", c.ClientIP()),
		zap.String("reason", reason))
}
