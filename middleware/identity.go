package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Authentication happens upstream; by the time a request reaches this
// service the edge gateway has already verified the session and stamped the
// identity headers. This middleware only lifts them into the context.

func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authenticated identity"})
			c.Abort()
			return
		}

		role := c.GetHeader("X-User-Role")
		if role == "" {
			role = "student"
		}

		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
