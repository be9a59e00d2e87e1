package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/writeit/writeit/internal/auth"
	"github.com/writeit/writeit/internal/models"
	"github.com/writeit/writeit/pkg/logging"
	"github.com/writeit/writeit/pkg/telemetry"
)

// authCookie is the cookie the web client stores its token in
const authCookie = "token"

// userIDKey is the gin context key holding the resolved user id
const userIDKey = "userID"

// Trace wraps each request in a span named after its method and route, so
// handler and repository spans nest under it
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx, span := telemetry.StartSpan(c.Request.Context(), c.Request.Method+" "+route)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logging.GetLogger().Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// tokenFromRequest extracts the raw token from the auth cookie or, failing
// that, an Authorization bearer header
func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(authCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// Identity resolves the requester's user id from their token, when present.
// Requests without a token (or with a bad one) proceed anonymously; handlers
// that need an identity stack RequireUser on top.
func Identity(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// RequireUser rejects requests that did not resolve to a user
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(userIDKey); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    models.CodeUnauthorized,
				"message": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// currentUserID returns the resolved user id, or nil for anonymous requests
func currentUserID(c *gin.Context) *int64 {
	v, ok := c.Get(userIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(int64)
	if !ok {
		return nil
	}
	return &id
}

// mustUserID returns the resolved user id on routes behind RequireUser
func mustUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
