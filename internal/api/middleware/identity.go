package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const anonymousUser = "anonymous"

// GatewayAuth trusts user info from gateway headers (X-User-ID, X-User-Email, X-User-Role).
// The upstream gateway validates credentials; this should ONLY be used with
// proper network isolation.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.GetHeader("X-User-ID")
		if userIDStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		c.Set("user_id_str", userIDStr)
		c.Set("user_email", c.GetHeader("X-User-Email"))
		c.Set("user_role", c.GetHeader("X-User-Role"))
		c.Next()
	}
}

// NoAuth admits every request as an anonymous caller (AUTH_MODE=none)
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id_str", anonymousUser)
		c.Next()
	}
}

// GetUserID retrieves the authenticated user ID set by any auth middleware
func GetUserID(c *gin.Context) (string, bool) {
	userIDStr, exists := c.Get("user_id_str")
	if !exists {
		return "", false
	}
	id, ok := userIDStr.(string)
	return id, ok
}

// GetUserRole retrieves the user role from gateway headers or token claims
func GetUserRole(c *gin.Context) (string, bool) {
	role, exists := c.Get("user_role")
	if !exists {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}
