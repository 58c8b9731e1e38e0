package httpapi

import (
	"strings"

	"github.com/dmitrijs2005/conduit/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// tokenFromHeader extracts the bearer credential from the Authorization
// header. Both "Token <jwt>" (the original API contract) and "Bearer <jwt>"
// are accepted.
func tokenFromHeader(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return strings.TrimSpace(parts[1])
	default:
		return ""
	}
}

// authRequired rejects requests without a valid, unexpired token.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromHeader(c)
		if token == "" {
			unauthorized(c)
			return
		}

		claims, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Next()
	}
}

// authOptional accepts anonymous requests; a present but invalid or expired
// token is treated as anonymous rather than rejected.
func (s *Server) authOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFromHeader(c); token != "" {
			if claims, err := auth.ParseToken(token, s.jwtSecret); err == nil {
				c.Set(userIDKey, claims.Subject)
			}
		}
		c.Next()
	}
}

// viewerID returns the authenticated user's ID, or "" for anonymous viewers.
func viewerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
