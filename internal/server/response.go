package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// abortWithError writes the error envelope shared by every failure path.
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   http.StatusText(status),
		"message": message,
		"status":  status,
	})
}

// fail writes the resource-level failure body used by the examples endpoints.
func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}
