package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/azlyth/irlcord/pkg/irlcord/auth"
)

// NewRouter builds the gin engine: a public health check and the API routes
// behind JWT or API key authentication.
func NewRouter(h *Handler, tokens *auth.Tokens, db *gorm.DB, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "irlcord",
		})
	})

	h.RegisterRoutes(r.Group("/api", auth.Middleware(tokens, db, logger)))
	return r
}

// requestLogger logs each request through slog
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}
