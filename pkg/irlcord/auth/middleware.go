// Package auth authenticates HTTP API callers with JWT bearer tokens or
// bcrypt-hashed API keys.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// ContextKeySubject is the key for the authenticated caller in gin context
	ContextKeySubject = "subject"
	// ContextKeyMethod records how the caller authenticated ("jwt" or "api_key")
	ContextKeyMethod = "auth_method"
)

// Middleware returns a middleware that authenticates via JWT or API key.
// Both are passed in the Authorization header as "Bearer <token>".
// JWTs contain dots, API keys are hex strings without dots.
func Middleware(tokens *Tokens, db *gorm.DB, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]

		if strings.Contains(token, ".") {
			claims, err := tokens.ValidateToken(token)
			if err != nil {
				if err == ErrExpiredToken {
					c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
				} else {
					c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				}
				c.Abort()
				return
			}

			c.Set(ContextKeySubject, claims.Subject)
			c.Set(ContextKeyMethod, "jwt")
			c.Next()
			return
		}

		apiKey, err := ValidateAPIKey(db, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}

		if err := UpdateLastUsed(db, apiKey.ID); err != nil {
			logger.Warn("failed to record api key use", "key_prefix", apiKey.KeyPrefix, "error", err)
		}

		c.Set(ContextKeySubject, "api_key:"+apiKey.KeyPrefix)
		c.Set(ContextKeyMethod, "api_key")
		c.Next()
	}
}

// GetSubject returns the authenticated caller from the gin context
func GetSubject(c *gin.Context) (string, bool) {
	subject, exists := c.Get(ContextKeySubject)
	if !exists {
		return "", false
	}
	return subject.(string), true
}
