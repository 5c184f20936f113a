package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// contextKey is a private key type to prevent collisions in context values.
type contextKey string

const (
	userIDKey    = contextKey("userID")
	loggerCtxKey = contextKey("logger")
)

// GetLoggerFromCtx retrieves the request-scoped logger from a standard context.
// It returns the default logger if none is present.
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userIDVal, exists := c.Get(string(userIDKey)); exists {
		if userID, ok := userIDVal.(string); ok {
			return userID, true
		}
		return "", false
	}
	// check in the request context as well
	if userIDVal := c.Request.Context().Value(userIDKey); userIDVal != nil {
		if userID, ok := userIDVal.(string); ok {
			return userID, true
		}
	}
	return "", false
}
