package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/michosso/memepump-auth/internal/logging"
	"github.com/michosso/memepump-auth/internal/server/auth"
	"github.com/michosso/memepump-auth/internal/server/services"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
	userIDKey       = "user_id"
)

// RequestID tags every request with an id, honoring one supplied by an
// upstream proxy. The id is echoed in the response header and attached to
// every log line the handlers emit.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// Recovery converts panics into logged 500 responses.
func Recovery(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error(c.Request.Context(), "handler panic",
					"path", c.Request.URL.Path, "request_id", requestID(c), "panic", rec)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					gin.H{"message": "internal server error"})
			}
		}()
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequireAuth validates the access-token cookie and stashes the user id in
// the request context. Every failure mode answers the same 401 so callers
// cannot probe token state.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(services.AccessTokenCookie)
		if err != nil || token == "" {
			unauthorized(c)
			return
		}

		claims, err := h.codec.Verify(token, auth.TokenAccess)
		if err != nil {
			unauthorized(c)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
