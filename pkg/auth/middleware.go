package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"itam/pkg/response"
)

const claimsContextKey = "authClaims"

// RequireAuth guards a route group with bearer token checks. The parsed
// claims land in the gin context for handlers that need the caller identity.
func RequireAuth(service AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.SendAPIResponse(c, http.StatusUnauthorized, false, "Authorization header missing", nil)
			c.Abort()
			return
		}

		token := bearerToken(header)
		if token == "" {
			response.SendAPIResponse(c, http.StatusUnauthorized, false, "Invalid authorization header", nil)
			c.Abort()
			return
		}

		claims, ok := service.Verify(token)
		if !ok {
			response.SendAPIResponse(c, http.StatusUnauthorized, false, "Invalid or expired token", nil)
			c.Abort()
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the claims RequireAuth stored for this request.
func ClaimsFromContext(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(claimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
