package server

import "github.com/gin-gonic/gin"

// jsonError writes the standard {"error": "..."} payload with the given status.
func jsonError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
