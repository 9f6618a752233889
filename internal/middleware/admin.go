package middleware

import (
	"net/http" // HTTP status codes

	"money_transfer/internal/ledger" // Ledger store

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware checks the user's role from the database on each request
func AdminOnlyMiddleware(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := store.WithContext(c.Request.Context()).FindUser(userID.(uint))
		if err != nil || user.Role != "admin" {
			// Unknown users and non-admins look the same
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
