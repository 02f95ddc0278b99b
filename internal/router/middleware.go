package router

import (
	"net/http"
	"strings"

	"skillup-go/internal/auth"
	"skillup-go/internal/handlers"
	"skillup-go/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CallerLoader parses a bearer token, if any, and stores the caller in the context.
// Requests without a token, or with an invalid one, continue as anonymous.
func CallerLoader(log *zap.Logger, tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.Next()
			return
		}
		caller, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			log.Debug("Rejected access token", zap.String("client_ip", c.ClientIP()), zap.Error(err))
			c.Next()
			return
		}
		handlers.SetCaller(c, caller)
		c.Next()
	}
}

// AuthRequired stops requests that carry no valid access token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !handlers.CallerFrom(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireRole lets through callers holding one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := handlers.CallerFrom(c)
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
