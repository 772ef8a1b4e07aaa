package middleware

import (
	"net/http"
	"strings"

	"github.com/cncdesign/cncbackend/metrics"
	"github.com/cncdesign/cncbackend/models"
	"github.com/cncdesign/cncbackend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware admits requests carrying a valid admin bearer token signed
// with secret. The token claims are copied onto the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			metrics.AuthDenied.WithLabelValues("missing").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := utils.ValidateToken(tokenStr, secret)
		if err != nil {
			metrics.AuthDenied.WithLabelValues("invalid").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if claims.Role != string(models.RoleAdmin) {
			metrics.AuthDenied.WithLabelValues("role").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}
