package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/transport/http/middleware"
	"github.com/rs/zerolog"
)

// NewRouter wires the auth routes. Protected routes go through
// AuthMiddleware backed by validator.
func NewRouter(logger zerolog.Logger, h *AuthHandler, validator middleware.SessionValidator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeadersMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	router.POST("/api/auth/login", h.Login)

	protected := router.Group("/api/auth")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		protected.GET("/session", h.Session)
		protected.POST("/logout", h.Logout)
	}

	return router
}
