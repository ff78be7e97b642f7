package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"parkly/internal/domain"
	"parkly/internal/pkg/jwt"
	"parkly/internal/pkg/response"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// Caller is resolved once per request and handed to services explicitly.
type Caller = domain.Caller

// JWTAuth resolves the caller from a bearer token. Websocket upgrades may
// pass the token as the "token" query parameter instead.
func JWTAuth(j *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, code, msg := bearerToken(c)
		if code != "" {
			response.Error(c, http.StatusUnauthorized, code, msg)
			c.Abort()
			return
		}

		claims, err := j.ValidateToken(tokenStr)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (token, code, msg string) {
	h := c.GetHeader("Authorization")
	if h == "" {
		if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") && c.Query("token") != "" {
			return c.Query("token"), "", ""
		}
		return "", "AUTH_HEADER_MISSING", "Authorization header is required"
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'"
	}

	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", "INVALID_AUTH_FORMAT", "Empty token"
	}
	return token, "", ""
}

// CallerFrom returns the authenticated caller. When none is present it
// writes a 401 and returns false.
func CallerFrom(c *gin.Context) (Caller, bool) {
	userID := c.GetInt64(userIDKey)
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		c.Abort()
		return Caller{}, false
	}
	return Caller{UserID: userID, Role: c.GetString(roleKey)}, true
}

// SetCaller installs an identity directly; used by tests and internal tools.
func SetCaller(c *gin.Context, caller Caller) {
	c.Set(userIDKey, caller.UserID)
	c.Set(roleKey, caller.Role)
}
