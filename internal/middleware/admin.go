package middleware

import (
	"net/http" // HTTP status codes

	"trade_journal/internal/metrics" // Denial counters

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// AdminOnlyMiddleware lets only admin principals through. It must run after
// JWTAuthMiddleware.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c) // Get principal from context
		// Check if a principal exists in context
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			return
		}
		// Check if principal role is admin
		if principal.IsAdmin() {
			c.Next() // If admin, proceed to the next handler
			return
		}
		metrics.AccessDenied.WithLabelValues("admin").Inc()
		logrus.WithFields(logrus.Fields{
			"user_id": principal.ID,
			"path":    c.FullPath(),
		}).Warn("Admin access denied")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
	}
}
