package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Serialize admits one request at a time. Waiting requests give up when
// their context is done.
func Serialize() gin.HandlerFunc {
	slot := make(chan struct{}, 1)
	return func(c *gin.Context) {
		select {
		case slot <- struct{}{}:
		case <-c.Request.Context().Done():
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled while waiting"})
			return
		}
		defer func() { <-slot }()
		c.Next()
	}
}
