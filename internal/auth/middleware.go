package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mesikahq/patient-registry/internal/respond"
)

type Middleware struct {
	service Service
}

func NewMiddleware(service Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuth guards a route group behind a bearer token. A missing or
// malformed header is a 401, a token that fails validation is a 403.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			respond.AbortJSON(c, respond.Fail(http.StatusUnauthorized,
				"No token provided, Bearer token required", nil))
			return
		}

		claims, err := m.service.ValidateToken(c.Request.Context(),
			strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			respond.AbortJSON(c, respond.Fail(http.StatusForbidden,
				"Invalid or expired token", nil))
			return
		}

		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// ActingUser returns the authenticated username from the gin context, empty
// when the request was not authenticated.
func ActingUser(c *gin.Context) string {
	return c.GetString("username")
}
