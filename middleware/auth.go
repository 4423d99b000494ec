package middleware

import (
	"net/http"
	"strings"

	"deliverus-api/models"
	"deliverus-api/services"

	"github.com/gin-gonic/gin"
)

const requesterKey = "requester"

// AuthRequired validates the JWT and injects the requester into context
func AuthRequired(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
			return
		}
		claims, err := auth.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(requesterKey, claims.Requester())
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := Requester(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not found in context"})
			return
		}
		for _, r := range roles {
			if req.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Access denied. Required role(s): " + rolesString(roles),
			"code":  "Forbidden",
		})
	}
}

func rolesString(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// Requester extracts the authenticated caller from context
func Requester(c *gin.Context) (models.Requester, bool) {
	val, ok := c.Get(requesterKey)
	if !ok {
		return models.Requester{}, false
	}
	req, ok := val.(models.Requester)
	return req, ok
}

// MustRequester is Requester for routes behind AuthRequired.
func MustRequester(c *gin.Context) models.Requester {
	req, _ := Requester(c)
	return req
}
