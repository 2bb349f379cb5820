package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/truckledger/service-logistics/internal/domain/session"
	"github.com/truckledger/service-logistics/internal/platform/response"
)

const sessionKey = "session"

// SessionResolver looks up the session behind a bearer token.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// SessionMiddleware requires a valid "Authorization: Bearer <token>" header.
func SessionMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		s, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired session")
			return
		}

		c.Set(sessionKey, s)
		c.Next()
	}
}

// RequireRole rejects sessions of any other role.
func RequireRole(role session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := GetSession(c)
		if !ok || s.Role != role {
			response.Forbidden(c, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetSession returns the session stored by SessionMiddleware.
func GetSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequirePlate rejects driver sessions acting on a plate path parameter other than their own.
func RequirePlate(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := GetSession(c)
		if !ok || !s.CanOperate(c.Param(param)) {
			response.Forbidden(c, "vehicle does not belong to this session")
			return
		}
		c.Next()
	}
}
