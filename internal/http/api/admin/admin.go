// Package admin registers the operator API and the health endpoint.
package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/careerhub/careerhub/internal/config"
	"github.com/careerhub/careerhub/internal/http/api/admin/handlers"
	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/careerhub/careerhub/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers /healthz and the /api/admin routes.
func RegisterAdminRoutes(r *gin.Engine, conn *gorm.DB, engine *ledger.Engine, cfg config.AdminConfig) {
	if r == nil || engine == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(conn)
	r.GET("/healthz", healthHandler.Healthz)

	admin := r.Group("/api/admin")
	authHandler := handlers.NewAuthHandler(cfg)
	admin.POST("/login", authHandler.Login)

	authed := admin.Group("")
	authed.Use(adminAuthMiddleware(cfg.JWTSecret))

	tokenHandler := handlers.NewTokenHandler(engine)
	authed.POST("/tokens/credit", tokenHandler.Credit)
	authed.GET("/tokens/:userID", tokenHandler.Get)
}

// adminAuthMiddleware validates operator JWTs.
func adminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseAdminToken(secret, token)
		if errJWT != nil {
			msg := "invalid token"
			if errors.Is(errJWT, security.ErrExpiredToken) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set("adminUsername", claims.Username)
		c.Next()
	}
}
