package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/internal/repository"
	"github.com/modamarket/storefront/pkg/errors"
)

const adminContextKey = "admin"

// AuthMiddleware authenticates sellers by API key, from the X-API-Key
// header or an Authorization bearer token.
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			auth := c.GetHeader("Authorization")
			apiKey = strings.TrimPrefix(auth, "Bearer ")
		}
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		admin, err := repos.Admin.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			if _, ok := err.(*errors.ErrUnauthorized); !ok {
				logger.Error("Failed to authenticate admin", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		c.Set(adminContextKey, admin)
		c.Next()
	}
}

// GetAdminFromContext returns the authenticated seller, if any
func GetAdminFromContext(c *gin.Context) (*domain.Admin, bool) {
	v, ok := c.Get(adminContextKey)
	if !ok {
		return nil, false
	}
	admin, ok := v.(*domain.Admin)
	return admin, ok
}
